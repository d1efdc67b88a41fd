package extractor

import (
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/terradex/domain"
)

// extractStructured runs the full HCL block-tree parse. It reports ok=false
// whenever the grammar rejects the file so the caller can fall back to the
// pattern baseline; it never lets a parser failure escape.
func extractStructured(filename string, src []byte) (ext Extraction, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("[extract] HCL parse panicked on %s: %v", filename, r)
			ext = Extraction{}
			ok = false
		}
	}()

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() || file == nil {
		logger.Debugf("[extract] HCL parse failed on %s: %s", filename, diags.Error())
		return Extraction{}, false
	}

	body, isSyntax := file.Body.(*hclsyntax.Body)
	if !isSyntax {
		return Extraction{}, false
	}

	for _, block := range body.Blocks {
		switch block.Type {
		case "provider":
			ext.addProvider(providerFromBlock(block))
		case "module":
			if call, found := moduleFromBlock(block); found {
				ext.addModule(call)
			}
		case "resource":
			if res, found := resourceFromBlock(block); found {
				ext.addResource(res)
			}
		case "variable":
			ext.addVariable(variableFromBlock(block, src))
		case "output":
			ext.addOutput(outputFromBlock(block, src))
		case "terraform":
			extractRequiredProviders(&ext, block)
		}
	}

	return ext, true
}

func providerFromBlock(block *hclsyntax.Block) domain.ProviderRef {
	name := ""
	if len(block.Labels) > 0 {
		name = block.Labels[0]
	}
	return domain.ProviderRef{
		Name:              name,
		VersionConstraint: stringAttrValue(block.Body, "version"),
	}
}

func moduleFromBlock(block *hclsyntax.Block) (domain.ModuleCall, bool) {
	name := ""
	if len(block.Labels) > 0 {
		name = block.Labels[0]
	}
	source := stringAttrValue(block.Body, "source")
	if source == "" {
		return domain.ModuleCall{}, false
	}
	return domain.ModuleCall{
		Name:              name,
		Source:            source,
		VersionConstraint: stringAttrValue(block.Body, "version"),
	}, true
}

func resourceFromBlock(block *hclsyntax.Block) (domain.Resource, bool) {
	if len(block.Labels) < 2 {
		return domain.Resource{}, false
	}
	return domain.Resource{Type: block.Labels[0], Name: block.Labels[1]}, true
}

func variableFromBlock(block *hclsyntax.Block, src []byte) domain.Variable {
	name := ""
	if len(block.Labels) > 0 {
		name = block.Labels[0]
	}

	v := domain.Variable{
		Name:        name,
		Type:        exprText(block.Body, "type", src),
		Description: stringAttrValue(block.Body, "description"),
		Required:    true,
	}
	if defaultAttr, hasDefault := block.Body.Attributes["default"]; hasDefault {
		v.Required = false
		v.Default = rangeText(src, defaultAttr.Expr.Range())
	}
	return v
}

func outputFromBlock(block *hclsyntax.Block, src []byte) domain.Output {
	name := ""
	if len(block.Labels) > 0 {
		name = block.Labels[0]
	}
	return domain.Output{
		Name:            name,
		Description:     stringAttrValue(block.Body, "description"),
		ValueExpression: exprText(block.Body, "value", src),
		Sensitive:       boolAttrValue(block.Body, "sensitive"),
	}
}

// extractRequiredProviders walks terraform { required_providers { ... } }
// blocks, the canonical declaration of provider source and version.
func extractRequiredProviders(ext *Extraction, terraformBlock *hclsyntax.Block) {
	for _, inner := range terraformBlock.Body.Blocks {
		if inner.Type != "required_providers" {
			continue
		}
		// Attribute maps iterate in random order; sorted names keep
		// extraction output deterministic across runs.
		names := make([]string, 0, len(inner.Body.Attributes))
		for name := range inner.Body.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			attr := inner.Body.Attributes[name]
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() || val.IsNull() {
				continue
			}

			provider := domain.ProviderRef{Name: name}
			switch {
			case val.Type().IsObjectType():
				provider.Source = objectStringAttr(val, "source")
				provider.VersionConstraint = objectStringAttr(val, "version")
			case val.Type() == cty.String:
				provider.VersionConstraint = val.AsString()
			}
			ext.addProvider(provider)
		}
	}
}

// --- attribute helpers ---

func stringAttrValue(body *hclsyntax.Body, name string) string {
	attr, found := body.Attributes[name]
	if !found {
		return ""
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || val.IsNull() || val.Type() != cty.String {
		return ""
	}
	return val.AsString()
}

func boolAttrValue(body *hclsyntax.Body, name string) bool {
	attr, found := body.Attributes[name]
	if !found {
		return false
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() || val.IsNull() || val.Type() != cty.Bool {
		return false
	}
	return val.True()
}

func objectStringAttr(val cty.Value, name string) string {
	if !val.Type().HasAttribute(name) {
		return ""
	}
	attr := val.GetAttr(name)
	if attr.IsNull() || attr.Type() != cty.String {
		return ""
	}
	return attr.AsString()
}

// exprText returns the source text of an attribute expression, preserving
// forms that are not statically evaluable (references, functions).
func exprText(body *hclsyntax.Body, name string, src []byte) string {
	attr, found := body.Attributes[name]
	if !found {
		return ""
	}
	text := rangeText(src, attr.Expr.Range())
	if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return text
}

func rangeText(src []byte, rng hcl.Range) string {
	if rng.Start.Byte < 0 || rng.End.Byte > len(src) || rng.Start.Byte > rng.End.Byte {
		return ""
	}
	return strings.TrimSpace(string(src[rng.Start.Byte:rng.End.Byte]))
}
