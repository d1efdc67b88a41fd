package domain

import "context"

// GitRepository is a working tree for one repository, checked out at whatever
// ref was requested last. Implementations own the tree for the duration of a
// run; no concurrent checkouts against the same tree.
type GitRepository interface {
	// URL returns the remote URL the tree was fetched from.
	URL() string

	// Root returns the absolute path of the working tree on disk.
	Root() string

	// Checkout switches the working tree to the given branch, tag or commit.
	Checkout(ref string) error

	// Tags returns all tag names of the repository, unordered.
	Tags() ([]string, error)

	// DefaultBranch returns the repository's default branch name.
	DefaultBranch() (string, error)
}

// GitClient fetches or updates working trees using pre-existing local
// credentials. It never manages credentials itself.
type GitClient interface {
	// FetchOrClone clones url under the given name, or fetches updates when a
	// tree for that name already exists.
	FetchOrClone(ctx context.Context, url, name string) (GitRepository, error)

	// Remove discards a working tree from disk.
	Remove(repo GitRepository) error
}
