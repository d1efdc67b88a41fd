package application

import "strings"

// describeModule derives a short description for a module. Rule: the first
// non-empty line block of the README whose first line is not a heading,
// joined into one line. When the README gives nothing, the leading comment
// block of main.tf is used. Both missing yields an empty string.
func describeModule(readme, mainSource string) string {
	if description := firstParagraph(readme); description != "" {
		return description
	}
	return leadingCommentBlock(mainSource)
}

// firstParagraph returns the first block of consecutive non-empty lines that
// does not start with a markdown heading, horizontal rule or badge-only line.
func firstParagraph(markdown string) string {
	var block []string
	flush := func() string { return strings.Join(block, " ") }

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			if len(block) > 0 {
				return flush()
			}
			continue
		}
		if isSkippableLine(line) {
			if len(block) > 0 {
				return flush()
			}
			continue
		}
		block = append(block, line)
	}

	return flush()
}

func isSkippableLine(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "===") {
		return true
	}
	// Badge-only lines: images or image links and nothing else.
	if strings.HasPrefix(line, "![") || strings.HasPrefix(line, "[![") {
		return true
	}
	return false
}

// leadingCommentBlock collects the comment lines at the very top of a
// declaration file, a common place for a one-line module synopsis.
func leadingCommentBlock(source string) string {
	var block []string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "#"):
			block = append(block, strings.TrimSpace(strings.TrimPrefix(line, "#")))
		case strings.HasPrefix(line, "//"):
			block = append(block, strings.TrimSpace(strings.TrimPrefix(line, "//")))
		case line == "":
			if len(block) > 0 {
				return strings.Join(block, " ")
			}
		default:
			return strings.Join(block, " ")
		}
	}
	return strings.Join(block, " ")
}
