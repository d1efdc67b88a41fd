package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
)

// ErrNotFound is returned by Lookup for an unknown identifier.
var ErrNotFound = errors.New("index entry not found")

const summaryExt = ".json"

// Index is the content-addressed lookup table over persisted summaries. One
// JSON file per summary, one JSON index document rewritten in full on every
// mutation. Single-process, single-run ownership; multi-process ingestion
// would need an external lock around Upsert/RebuildFromStorage.
type Index struct {
	summariesDir string
	indexFile    string
	entries      map[string]domain.IndexEntry
}

// New opens (or initializes) the index backed by the configured storage
// locations. A missing or unreadable index file starts empty; a later
// RebuildFromStorage recovers it from the persisted summaries.
func New(cfg *config.Config) *Index {
	idx := &Index{
		summariesDir: cfg.Storage.SummariesDir,
		indexFile:    cfg.Storage.IndexFile,
		entries:      make(map[string]domain.IndexEntry),
	}

	data, err := os.ReadFile(idx.indexFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("[index] failed to read index file %q, starting empty: %v", idx.indexFile, err)
		}
		return idx
	}
	if unmarshalErr := json.Unmarshal(data, &idx.entries); unmarshalErr != nil {
		logger.Warnf("[index] index file %q is corrupt, starting empty: %v", idx.indexFile, unmarshalErr)
		idx.entries = make(map[string]domain.IndexEntry)
	}

	return idx
}

// AssignID computes the content-addressed identifier for a summary: the
// SHA-256 digest of "repository:ref:path". It is a pure function of the
// identity triple, stable across runs and platforms.
func AssignID(summary domain.ModuleSummary) string {
	digest := sha256.Sum256([]byte(summary.Repository + ":" + summary.Ref + ":" + summary.Path))
	return hex.EncodeToString(digest[:])
}

// Upsert persists the summary to its storage location, writes or overwrites
// the index entry, rewrites the index file and returns the summary's ID.
// Storage failures propagate to the caller.
func (i *Index) Upsert(summary domain.ModuleSummary) (string, error) {
	id := AssignID(summary)
	location := i.summaryLocation(id, summary)

	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	if writeErr := os.WriteFile(location, data, 0o644); writeErr != nil {
		return "", fmt.Errorf("failed to write summary %q: %w", location, writeErr)
	}

	i.entries[id] = buildEntry(id, summary, location)

	if flushErr := i.flush(); flushErr != nil {
		return "", flushErr
	}
	return id, nil
}

// Lookup returns the entry for an identifier, or ErrNotFound.
func (i *Index) Lookup(id string) (domain.IndexEntry, error) {
	entry, found := i.entries[id]
	if !found {
		return domain.IndexEntry{}, ErrNotFound
	}
	return entry, nil
}

// SearchByProvider returns entries whose primary or secondary providers
// include the given name (case-insensitive exact match).
func (i *Index) SearchByProvider(name string) []domain.IndexEntry {
	name = strings.ToLower(name)
	return i.filter(func(entry domain.IndexEntry) bool {
		if strings.ToLower(entry.Provider) == name {
			return true
		}
		for _, p := range strings.Split(entry.Providers, ",") {
			if strings.ToLower(strings.TrimSpace(p)) == name {
				return true
			}
		}
		return false
	})
}

// SearchByTag returns entries carrying the given derived keyword
// (case-insensitive exact match).
func (i *Index) SearchByTag(tag string) []domain.IndexEntry {
	tag = strings.ToLower(tag)
	return i.filter(func(entry domain.IndexEntry) bool {
		for _, t := range entry.Tags {
			if strings.ToLower(t) == tag {
				return true
			}
		}
		return false
	})
}

// SearchByRepository returns entries whose repository URL contains the given
// substring (case-insensitive).
func (i *Index) SearchByRepository(substring string) []domain.IndexEntry {
	substring = strings.ToLower(substring)
	return i.filter(func(entry domain.IndexEntry) bool {
		return strings.Contains(strings.ToLower(entry.Repository), substring)
	})
}

// All returns every entry, ordered by ID for reproducible output.
func (i *Index) All() []domain.IndexEntry {
	return i.filter(func(domain.IndexEntry) bool { return true })
}

// RebuildFromStorage discards the in-memory table, scans every persisted
// summary file and reconstructs the index from scratch, recomputing each ID.
// Unchanged summaries produce identical IDs to their original Upsert calls.
func (i *Index) RebuildFromStorage() (int, error) {
	rebuilt := make(map[string]domain.IndexEntry)

	walkErr := filepath.WalkDir(i.summariesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, summaryExt) || path == i.indexFile {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read summary %q: %w", path, readErr)
		}

		var summary domain.ModuleSummary
		if unmarshalErr := json.Unmarshal(data, &summary); unmarshalErr != nil {
			logger.Warnf("[index] skipping unreadable summary %q: %v", path, unmarshalErr)
			return nil
		}
		if summary.Repository == "" || summary.Ref == "" || summary.Path == "" {
			logger.Warnf("[index] skipping summary %q with incomplete identity", path)
			return nil
		}

		id := AssignID(summary)
		rebuilt[id] = buildEntry(id, summary, path)
		return nil
	})
	if walkErr != nil {
		return 0, fmt.Errorf("failed to scan summaries: %w", walkErr)
	}

	i.entries = rebuilt
	if flushErr := i.flush(); flushErr != nil {
		return 0, flushErr
	}
	return len(rebuilt), nil
}

func (i *Index) filter(keep func(domain.IndexEntry) bool) []domain.IndexEntry {
	var result []domain.IndexEntry
	for _, entry := range i.entries {
		if keep(entry) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result
}

// summaryLocation derives the deterministic storage path for a summary:
// summaries/<repo name>/<ref>/<path>-<id prefix>.json with every component
// sanitized for filesystem safety. Sanitization is lossy (ref "feature/x"
// and ref "feature_x" sanitize identically), so the leaf carries a short
// prefix of the content-addressed ID to keep distinct triples at distinct
// locations.
func (i *Index) summaryLocation(id string, summary domain.ModuleSummary) string {
	return filepath.Join(
		i.summariesDir,
		sanitizeComponent(config.RepositoryName(summary.Repository)),
		sanitizeComponent(summary.Ref),
		sanitizeComponent(summary.Path)+"-"+id[:8]+summaryExt,
	)
}

// flush rewrites the index file in full.
func (i *Index) flush() error {
	if err := os.MkdirAll(filepath.Dir(i.indexFile), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	data, err := json.MarshalIndent(i.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if writeErr := os.WriteFile(i.indexFile, data, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write index file: %w", writeErr)
	}
	return nil
}

var componentReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
)

func sanitizeComponent(component string) string {
	sanitized := componentReplacer.Replace(component)
	if sanitized == "" || sanitized == "." {
		return "root"
	}
	return sanitized
}

// buildEntry derives the filterable metadata for one summary.
func buildEntry(id string, summary domain.ModuleSummary, location string) domain.IndexEntry {
	providerNames := make([]string, 0, len(summary.Providers))
	for _, p := range summary.Providers {
		providerNames = append(providerNames, strings.ToLower(p.Name))
	}

	primary := ""
	if len(providerNames) > 0 {
		primary = providerNames[0]
	}

	return domain.IndexEntry{
		ID:              id,
		Repository:      summary.Repository,
		Ref:             summary.Ref,
		Path:            summary.Path,
		SummaryLocation: location,
		Provider:        primary,
		Providers:       strings.Join(providerNames, ","),
		Tags:            deriveTags(summary, providerNames),
		LastIndexed:     time.Now().UTC(),
	}
}

// deriveTags builds searchable keywords: provider names, the repository
// name, and the module path segments.
func deriveTags(summary domain.ModuleSummary, providerNames []string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || tag == "." || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	add("terraform")
	for _, name := range providerNames {
		add(name)
	}
	add(config.RepositoryName(summary.Repository))
	for _, segment := range strings.Split(summary.Path, "/") {
		add(segment)
	}

	return tags
}
