package extractor

// Aliases for tests living in the extractor_test package.
var (
	ExtractWithPatterns = extractWithPatterns
	ExtractStructured   = extractStructured
	BraceBody           = braceBody
)
