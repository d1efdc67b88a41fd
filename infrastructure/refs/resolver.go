package refs

import (
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/terradex/config"
	"github.com/rios0rios0/terradex/domain"
)

// Resolve returns the ordered list of refs to process for one repository:
// the configured branches verbatim (order preserved, duplicates kept), then
// the repository's tags sorted by version precedence and truncated to
// MaxTags. When IgnoreDefaultBranch is set, the detected default branch is
// removed from the result.
//
// Failures to list tags or detect the default branch are logged and
// tolerated; resolution continues with whatever was already resolved.
func Resolve(repo domain.GitRepository, cfg config.RepositoryConfig) []string {
	refs := make([]string, 0, len(cfg.Branches))
	refs = append(refs, cfg.Branches...)

	if cfg.IncludeTags {
		tags, err := repo.Tags()
		if err != nil {
			logger.Warnf("[refs] failed to list tags for %s: %v", repo.URL(), err)
		} else {
			refs = append(refs, SortTags(tags, cfg.MaxTags)...)
		}
	}

	if cfg.IgnoreDefaultBranch {
		defaultBranch, err := repo.DefaultBranch()
		if err != nil {
			logger.Debugf("[refs] default branch detection failed for %s: %v", repo.URL(), err)
		} else {
			refs = withoutRef(refs, defaultBranch)
		}
	}

	return refs
}

// SortTags orders tags by semantic version precedence, descending, with
// every tag that does not parse as a semantic version appended afterwards in
// descending lexicographic order. The combined list is truncated to maxTags
// (0 or negative means unlimited).
func SortTags(tags []string, maxTags int) []string {
	var valid, other []string
	for _, tag := range tags {
		if semver.IsValid(normalizeVersion(tag)) {
			valid = append(valid, tag)
		} else {
			other = append(other, tag)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return semver.Compare(normalizeVersion(valid[i]), normalizeVersion(valid[j])) > 0
	})
	sort.Sort(sort.Reverse(sort.StringSlice(other)))

	sorted := append(valid, other...)
	if maxTags > 0 && len(sorted) > maxTags {
		sorted = sorted[:maxTags]
	}
	return sorted
}

func withoutRef(refs []string, unwanted string) []string {
	filtered := refs[:0]
	for _, ref := range refs {
		if ref != unwanted {
			filtered = append(filtered, ref)
		}
	}
	return filtered
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
