package application

// Aliases for tests living in the application_test package.
var (
	DescribeModule      = describeModule
	FirstParagraph      = firstParagraph
	LeadingCommentBlock = leadingCommentBlock
	SummarizeRoot       = (*IngestService).summarizeRoot
)
