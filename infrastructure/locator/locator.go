package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
)

// declarationExt is the file extension that qualifies a directory as a
// module root.
const declarationExt = ".tf"

// skipDirs are directory names never descended into: VCS internals and
// vendored module caches.
var skipDirs = map[string]bool{
	".git":       true,
	".terraform": true,
}

// FindModuleRoots returns every directory under basePath (relative to
// treeRoot) that contains at least one declaration file. Paths are returned
// relative to treeRoot, with "." denoting the repository root, in stable
// lexicographic order.
//
// In non-recursive mode only basePath itself is tested. In recursive mode the
// traversal is depth-first; directories matching any excludePaths prefix are
// pruned entirely, so nothing beneath them is visited or reported.
func FindModuleRoots(treeRoot, basePath string, recursive bool, excludePaths []string) ([]string, error) {
	base := filepath.Join(treeRoot, filepath.FromSlash(basePath))

	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan path %q: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path %q is not a directory", basePath)
	}

	if !recursive {
		qualifies, checkErr := hasDeclarationFile(base)
		if checkErr != nil {
			return nil, checkErr
		}
		if !qualifies {
			return nil, nil
		}
		return []string{relativePath(treeRoot, base)}, nil
	}

	// The base path itself must be readable; below it, an unreadable
	// directory only loses its own subtree, never the siblings.
	if _, err := os.ReadDir(base); err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", base, err)
	}

	var roots []string
	walk(treeRoot, base, excludePaths, &roots)
	return roots, nil
}

// walk performs the depth-first traversal. os.ReadDir returns entries sorted
// by name, which gives the stable lexicographic order. Unreadable
// directories are logged and skipped with their whole subtree.
func walk(treeRoot, dir string, excludePaths []string, roots *[]string) {
	rel := relativePath(treeRoot, dir)
	if isExcluded(rel, excludePaths) {
		logger.Debugf("[locate] pruning excluded path %q", rel)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnf("[locate] skipping unreadable directory %q: %v", rel, err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), declarationExt) {
			*roots = append(*roots, rel)
			break
		}
	}

	for _, entry := range entries {
		if !entry.IsDir() || skipDirs[entry.Name()] {
			continue
		}
		walk(treeRoot, filepath.Join(dir, entry.Name()), excludePaths, roots)
	}
}

func hasDeclarationFile(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), declarationExt) {
			return true, nil
		}
	}
	return false, nil
}

// relativePath normalizes dir to a slash-separated path relative to treeRoot.
// The tree root itself is ".".
func relativePath(treeRoot, dir string) string {
	rel, err := filepath.Rel(treeRoot, dir)
	if err != nil || rel == "." {
		return "."
	}
	return filepath.ToSlash(rel)
}

// isExcluded reports whether rel matches any exclusion prefix. A prefix
// matches the directory itself and everything beneath it.
func isExcluded(rel string, excludePaths []string) bool {
	if rel == "." {
		return false
	}
	for _, prefix := range excludePaths {
		prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")
		if prefix == "" {
			continue
		}
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}
	return false
}
