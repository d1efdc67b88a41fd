package config

// Aliases for tests living in the config_test package.
var (
	ResolveSecret = resolveSecret
	ApplyDefaults = applyDefaults
	Validate      = validate
)
