package domain

import "time"

// ModuleSummary is the extracted metadata for one module root at one ref.
// The (Repository, Ref, Path) triple uniquely identifies a summary;
// re-processing the same triple overwrites rather than duplicates.
type ModuleSummary struct {
	Repository    string        `json:"repository"`
	Ref           string        `json:"ref"`
	Path          string        `json:"path"` // relative to the repository root, "." for the root itself
	Description   string        `json:"description"`
	Variables     []Variable    `json:"variables"`
	Outputs       []Output      `json:"outputs"`
	Providers     []ProviderRef `json:"providers"`
	Modules       []ModuleCall  `json:"modules"`
	ReadmeContent string        `json:"readme_content"`
}

// Variable is a declared input variable.
type Variable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     string `json:"default"`
	Required    bool   `json:"required"` // true iff no default was declared
}

// Output is a declared output value.
type Output struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	ValueExpression string `json:"value_expression"`
	Sensitive       bool   `json:"sensitive"`
}

// ProviderRef is a provider requirement, deduplicated by Name.
type ProviderRef struct {
	Name              string `json:"name"`
	Source            string `json:"source"`
	VersionConstraint string `json:"version_constraint"`
}

// ModuleCall is a sub-module invocation, deduplicated by (Name, Source).
type ModuleCall struct {
	Name              string `json:"name"`
	Source            string `json:"source"`
	VersionConstraint string `json:"version_constraint"`
}

// Resource is a managed resource declaration, deduplicated by (Type, Name).
type Resource struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// IndexEntry maps a content-addressed identifier to a persisted summary and
// its filterable metadata. ID is a pure function of (Repository, Ref, Path),
// so re-indexing an unchanged summary is an idempotent overwrite.
type IndexEntry struct {
	ID              string    `json:"id"`
	Repository      string    `json:"repository"`
	Ref             string    `json:"ref"`
	Path            string    `json:"path"`
	SummaryLocation string    `json:"summary_location"`
	Provider        string    `json:"provider"`  // primary provider, normalized
	Providers       string    `json:"providers"` // all providers, comma-joined
	Tags            []string  `json:"tags"`      // derived keywords
	LastIndexed     time.Time `json:"last_indexed"`
}
