package gittransport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
)

// Client manages working trees under a single workspaces directory. It relies
// on the ambient credential setup of the machine (ssh agent, git credential
// helpers) and never handles credentials itself.
type Client struct {
	workspacesDir string
}

// NewClient creates a transport client storing working trees under the
// configured workspaces directory.
func NewClient(cfg *config.Config) domain.GitClient {
	return &Client{workspacesDir: cfg.Storage.WorkspacesDir}
}

// FetchOrClone clones the repository when no working tree exists for name, or
// opens the existing tree and fetches updates (branches and all tags).
func (c *Client) FetchOrClone(ctx context.Context, url, name string) (domain.GitRepository, error) {
	path := filepath.Join(c.workspacesDir, name)

	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return c.openAndFetch(ctx, url, path)
	}

	if err := os.MkdirAll(c.workspacesDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspaces directory: %w", err)
	}

	logger.Infof("[git] cloning %s into %s", url, path)
	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %q: %w", url, err)
	}

	return &workingTree{url: url, path: path, repo: repo}, nil
}

func (c *Client) openAndFetch(ctx context.Context, url, path string) (domain.GitRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open working tree %q: %w", path, err)
	}

	logger.Debugf("[git] fetching updates for %s", url)
	fetchErr := repo.FetchContext(ctx, &git.FetchOptions{
		Tags:  git.AllTags,
		Force: true,
	})
	if fetchErr != nil && !errors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to fetch %q: %w", url, fetchErr)
	}

	return &workingTree{url: url, path: path, repo: repo}, nil
}

// Remove discards a working tree from disk.
func (c *Client) Remove(repo domain.GitRepository) error {
	path := repo.Root()
	if path == "" || path == "/" {
		return fmt.Errorf("refusing to remove suspicious working tree path %q", path)
	}
	return os.RemoveAll(path)
}

// workingTree implements domain.GitRepository on top of go-git.
type workingTree struct {
	url  string
	path string
	repo *git.Repository
}

func (w *workingTree) URL() string  { return w.url }
func (w *workingTree) Root() string { return w.path }

// Checkout switches the tree to the given branch, tag or commit. Any revision
// go-git can resolve is accepted.
func (w *workingTree) Checkout(ref string) error {
	hash, err := w.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		// Branches may only exist as remote-tracking refs after a fetch.
		hash, err = w.repo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + ref))
		if err != nil {
			return fmt.Errorf("failed to resolve ref %q: %w", ref, err)
		}
	}

	worktree, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if checkoutErr := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); checkoutErr != nil {
		return fmt.Errorf("failed to checkout %q: %w", ref, checkoutErr)
	}

	return nil
}

// Tags returns all tag names, unordered.
func (w *workingTree) Tags() ([]string, error) {
	iter, err := w.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []string
	iterErr := iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if iterErr != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", iterErr)
	}

	return tags, nil
}

// DefaultBranch prefers the symbolic origin/HEAD reference, then falls back
// through conventional branch names, then the currently checked-out branch.
func (w *workingTree) DefaultBranch() (string, error) {
	if ref, err := w.repo.Reference("refs/remotes/origin/HEAD", false); err == nil {
		target := ref.Target().String()
		return filepath.Base(target), nil
	}

	for _, candidate := range []string{"main", "master", "trunk", "develop"} {
		if _, err := w.repo.Reference(plumbing.NewBranchReferenceName(candidate), true); err == nil {
			return candidate, nil
		}
		if _, err := w.repo.Reference(plumbing.NewRemoteReferenceName("origin", candidate), true); err == nil {
			return candidate, nil
		}
	}

	head, err := w.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to detect default branch: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", errors.New("HEAD is detached, cannot detect default branch")
	}
	return head.Name().Short(), nil
}
