package extractor

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/terradex/domain"
)

// Block-header patterns. Bodies are resolved separately by brace matching so
// nested blocks do not cut a declaration short.
var (
	providerHeaderPattern = regexp.MustCompile(`(?m)^\s*provider\s+"([^"]+)"\s*\{`)
	moduleHeaderPattern   = regexp.MustCompile(`(?m)^\s*module\s+"([^"]+)"\s*\{`)
	resourceHeaderPattern = regexp.MustCompile(`(?m)^\s*resource\s+"([^"]+)"\s+"([^"]+)"\s*\{`)
	variableHeaderPattern = regexp.MustCompile(`(?m)^\s*variable\s+"([^"]+)"\s*\{`)
	outputHeaderPattern   = regexp.MustCompile(`(?m)^\s*output\s+"([^"]+)"\s*\{`)

	requiredProvidersPattern = regexp.MustCompile(`required_providers\s*\{`)
	providerEntryPattern     = regexp.MustCompile(`(?ms)^\s*([A-Za-z0-9_-]+)\s*=\s*\{([^}]*)\}`)
	providerShortPattern     = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9_-]+)\s*=\s*"([^"]+)"\s*$`)

	defaultAttrPattern   = regexp.MustCompile(`(?m)^\s*default\s*=`)
	sensitiveAttrPattern = regexp.MustCompile(`(?m)^\s*sensitive\s*=\s*true\b`)
)

// extractWithPatterns scans raw text for declaration blocks without any
// grammar support. It tolerates syntax the HCL parser rejects and is the
// guaranteed baseline of every extraction.
func extractWithPatterns(content string) Extraction {
	var ext Extraction

	for _, match := range providerHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[match[2]:match[3]]
		body := braceBody(content, match[1]-1)
		ext.addProvider(domain.ProviderRef{
			Name:              name,
			VersionConstraint: stringAttr(body, "version"),
		})
	}

	for _, match := range requiredProvidersPattern.FindAllStringIndex(content, -1) {
		body := braceBody(content, match[1]-1)
		for _, entry := range providerEntryPattern.FindAllStringSubmatch(body, -1) {
			ext.addProvider(domain.ProviderRef{
				Name:              entry[1],
				Source:            stringAttr(entry[2], "source"),
				VersionConstraint: stringAttr(entry[2], "version"),
			})
		}
		// Legacy form: name = "constraint". Object entries are stripped first
		// so their source/version lines are not mistaken for provider names.
		flat := providerEntryPattern.ReplaceAllString(body, "")
		for _, entry := range providerShortPattern.FindAllStringSubmatch(flat, -1) {
			ext.addProvider(domain.ProviderRef{
				Name:              entry[1],
				VersionConstraint: entry[2],
			})
		}
	}

	for _, match := range moduleHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[match[2]:match[3]]
		body := braceBody(content, match[1]-1)
		source := stringAttr(body, "source")
		if source == "" {
			continue
		}
		ext.addModule(domain.ModuleCall{
			Name:              name,
			Source:            source,
			VersionConstraint: stringAttr(body, "version"),
		})
	}

	for _, match := range resourceHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		ext.addResource(domain.Resource{
			Type: content[match[2]:match[3]],
			Name: content[match[4]:match[5]],
		})
	}

	for _, match := range variableHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[match[2]:match[3]]
		body := braceBody(content, match[1]-1)
		hasDefault := defaultAttrPattern.MatchString(body)
		ext.addVariable(domain.Variable{
			Name:        name,
			Type:        rawAttr(body, "type"),
			Description: stringAttr(body, "description"),
			Default:     rawAttr(body, "default"),
			Required:    !hasDefault,
		})
	}

	for _, match := range outputHeaderPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[match[2]:match[3]]
		body := braceBody(content, match[1]-1)
		ext.addOutput(domain.Output{
			Name:            name,
			Description:     stringAttr(body, "description"),
			ValueExpression: rawAttr(body, "value"),
			Sensitive:       sensitiveAttrPattern.MatchString(body),
		})
	}

	return ext
}

// braceBody returns the text between the opening brace at openIdx and its
// matching closing brace. Braces inside quoted strings and line comments are
// ignored. Returns everything up to the end of content when the block is
// unterminated.
func braceBody(content string, openIdx int) string {
	if openIdx < 0 || openIdx >= len(content) || content[openIdx] != '{' {
		return ""
	}

	depth := 0
	inString := false
	inComment := false
	for i := openIdx; i < len(content); i++ {
		c := content[i]

		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			switch c {
			case '\\':
				i++ // skip escaped char
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '#':
			inComment = true
		case '/':
			if i+1 < len(content) && content[i+1] == '/' {
				inComment = true
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[openIdx+1 : i]
			}
		}
	}

	return content[openIdx+1:]
}

// stringAttr extracts a quoted string attribute value from a block body.
func stringAttr(body, name string) string {
	pattern := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=\s*"([^"]*)"`)
	if matches := pattern.FindStringSubmatch(body); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// rawAttr extracts the raw right-hand side of an attribute, trimmed. Values
// spanning multiple lines (objects, lists, heredocs) keep only the first line
// plus a continuation marker; the structured parse recovers the full text.
func rawAttr(body, name string) string {
	pattern := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(name) + `\s*=\s*(.+)$`)
	matches := pattern.FindStringSubmatch(body)
	if len(matches) < 2 {
		return ""
	}

	value := strings.TrimSpace(matches[1])
	value = strings.TrimSuffix(value, "\r")
	if strings.HasSuffix(value, "{") || strings.HasSuffix(value, "[") || strings.HasSuffix(value, "(") {
		value += "..."
	}
	if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	return value
}
