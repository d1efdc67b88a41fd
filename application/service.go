package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
	"github.com/rios0rios0/terradex/infrastructure/extractor"
	"github.com/rios0rios0/terradex/infrastructure/index"
	"github.com/rios0rios0/terradex/infrastructure/locator"
	"github.com/rios0rios0/terradex/infrastructure/refs"
)

const declarationExt = ".tf"

// readmeNames are probed in order for the module description source.
var readmeNames = []string{"README.md", "README.MD", "readme.md", "README"}

// IngestService orchestrates the full ingestion flow: fetch working trees,
// resolve refs, discover module roots, extract declarations and persist the
// resulting summaries.
type IngestService struct {
	git       domain.GitClient
	index     *index.Index
	publisher *Publisher // nil when semantic publication is disabled
}

// NewIngestService creates a service with the given collaborators.
func NewIngestService(git domain.GitClient, idx *index.Index, publisher *Publisher) *IngestService {
	return &IngestService{
		git:       git,
		index:     idx,
		publisher: publisher,
	}
}

// Ingest processes every configured repository and returns all summaries that
// were produced. Repository, ref and module failures are logged and skipped;
// only configuration-level problems make the whole run fail. Re-running
// against unchanged repositories yields identical IDs and equal summaries.
func (s *IngestService) Ingest(ctx context.Context, cfg *config.Config) ([]domain.ModuleSummary, error) {
	if len(cfg.Repositories) == 0 {
		return nil, errors.New("no repositories configured")
	}

	var all []domain.ModuleSummary
	totalRefs := 0
	totalFailures := 0

	for _, repoCfg := range cfg.Repositories {
		logger.Infof("[ingest] processing repository %s", repoCfg.URL)

		handle, err := s.git.FetchOrClone(ctx, repoCfg.URL, repoCfg.Name)
		if err != nil {
			logger.Errorf("[ingest] failed to fetch %s: %v", repoCfg.URL, err)
			totalFailures++
			continue
		}

		resolved := refs.Resolve(handle, repoCfg)
		if len(resolved) == 0 {
			logger.Warnf("[ingest] no refs resolved for %s", repoCfg.URL)
		}

		for _, ref := range resolved {
			totalRefs++
			summaries, refErr := s.summarizeRef(handle, ref, repoCfg)
			if refErr != nil {
				logger.Warnf("[ingest] skipping ref %q of %s: %v", ref, repoCfg.URL, refErr)
				totalFailures++
				continue
			}

			for _, summary := range summaries {
				if persistErr := s.persist(ctx, cfg, summary); persistErr != nil {
					return all, persistErr
				}
			}
			all = append(all, summaries...)
		}

		if !cfg.Storage.KeepWorkspaces {
			if removeErr := s.git.Remove(handle); removeErr != nil {
				logger.Warnf("[ingest] failed to remove working tree for %s: %v", repoCfg.URL, removeErr)
			}
		}
	}

	logger.Infof(
		"[ingest] run complete: %d repositories, %d refs, %d modules indexed, %d failures",
		len(cfg.Repositories), totalRefs, len(all), totalFailures,
	)
	return all, nil
}

// SummarizeRepository summarizes a single ad-hoc repository URL on its
// default branch, recursively, without touching persisted configuration or
// the index.
func (s *IngestService) SummarizeRepository(ctx context.Context, url string) ([]domain.ModuleSummary, error) {
	name := config.RepositoryName(url)

	handle, err := s.git.FetchOrClone(ctx, url, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", url, err)
	}
	defer func() {
		if removeErr := s.git.Remove(handle); removeErr != nil {
			logger.Warnf("[ingest] failed to remove working tree for %s: %v", url, removeErr)
		}
	}()

	ref, err := handle.DefaultBranch()
	if err != nil {
		logger.Debugf("[ingest] default branch detection failed for %s, using HEAD: %v", url, err)
		ref = "HEAD"
	}

	repoCfg := config.RepositoryConfig{
		URL:       url,
		Name:      name,
		Path:      ".",
		Recursive: true,
	}
	return s.summarizeRef(handle, ref, repoCfg)
}

// persist writes the summary to the content index and, when enabled, to the
// vector store. Index write failures abort the run only in fail-fast mode.
func (s *IngestService) persist(ctx context.Context, cfg *config.Config, summary domain.ModuleSummary) error {
	id, err := s.index.Upsert(summary)
	if err != nil {
		if cfg.Storage.FailFast {
			return fmt.Errorf("failed to index %s@%s %s: %w", summary.Repository, summary.Ref, summary.Path, err)
		}
		logger.Errorf("[ingest] failed to index %s@%s %s: %v", summary.Repository, summary.Ref, summary.Path, err)
		return nil
	}

	if s.publisher != nil {
		if publishErr := s.publisher.Publish(ctx, id, summary); publishErr != nil {
			logger.Errorf("[ingest] failed to publish %s: %v", id, publishErr)
		}
	}
	return nil
}

// summarizeRef checks out one ref and produces one summary per discovered
// module root. A failing module root is skipped without affecting siblings.
func (s *IngestService) summarizeRef(handle domain.GitRepository, ref string, repoCfg config.RepositoryConfig) ([]domain.ModuleSummary, error) {
	if err := handle.Checkout(ref); err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	roots, err := locator.FindModuleRoots(handle.Root(), repoCfg.Path, repoCfg.Recursive, repoCfg.ExcludePaths)
	if err != nil {
		return nil, fmt.Errorf("module discovery failed: %w", err)
	}

	var summaries []domain.ModuleSummary
	for _, root := range roots {
		summary, rootErr := s.summarizeRoot(handle, ref, root)
		if rootErr != nil {
			logger.Warnf("[ingest] skipping module root %q at %s@%s: %v", root, repoCfg.URL, ref, rootErr)
			continue
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// summarizeRoot extracts declarations from every file of one module root and
// assembles the summary. Unexpected panics from extraction are contained
// here so sibling module roots keep processing.
func (s *IngestService) summarizeRoot(handle domain.GitRepository, ref, root string) (summary domain.ModuleSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()

	dir := filepath.Join(handle.Root(), filepath.FromSlash(root))
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		return domain.ModuleSummary{}, fmt.Errorf("failed to read module root: %w", readErr)
	}

	var merged extractor.Extraction
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), declarationExt) {
			continue
		}
		src, fileErr := os.ReadFile(filepath.Join(dir, entry.Name()))
		if fileErr != nil {
			logger.Warnf("[ingest] failed to read %s: %v", filepath.Join(root, entry.Name()), fileErr)
			continue
		}
		fileExt := extractor.Extract(entry.Name(), src)
		merged.Merge(fileExt)
	}

	readme := readReadme(dir)
	mainSource := readFileIfPresent(filepath.Join(dir, "main.tf"))

	return domain.ModuleSummary{
		Repository:    handle.URL(),
		Ref:           ref,
		Path:          root,
		Description:   describeModule(readme, mainSource),
		Variables:     merged.Variables,
		Outputs:       merged.Outputs,
		Providers:     merged.Providers,
		Modules:       merged.Modules,
		ReadmeContent: readme,
	}, nil
}

func readReadme(dir string) string {
	for _, name := range readmeNames {
		if content := readFileIfPresent(filepath.Join(dir, name)); content != "" {
			return content
		}
	}
	return ""
}

func readFileIfPresent(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
