package extractor

import (
	"github.com/rios0rios0/terradex/domain"
)

// Extraction holds every declaration found in one or more Terraform files,
// deduplicated by declaration key.
type Extraction struct {
	Providers []domain.ProviderRef
	Modules   []domain.ModuleCall
	Resources []domain.Resource
	Variables []domain.Variable
	Outputs   []domain.Output
}

// Extract parses Terraform source text and returns every provider, module
// call, resource, variable and output declaration it can find. It never
// returns an error: two independent strategies run over the text and their
// results are merged. The pattern-based scan is the baseline; when the full
// HCL parse succeeds its richer results overlay the baseline, resolved by
// declaration key. When the HCL parse rejects the file (e.g. an expression
// form the grammar cannot handle) the pattern-based results stand alone.
func Extract(filename string, src []byte) Extraction {
	result := extractWithPatterns(string(src))

	structured, ok := extractStructured(filename, src)
	if ok {
		result.overlay(structured)
	}

	return result
}

// Merge folds another extraction into this one, keeping the first occurrence
// of each declaration key and filling in fields the first sighting left
// empty. Used when combining results across the files of one module root.
func (e *Extraction) Merge(other Extraction) {
	for _, p := range other.Providers {
		e.addProvider(p)
	}
	for _, m := range other.Modules {
		e.addModule(m)
	}
	for _, r := range other.Resources {
		e.addResource(r)
	}
	for _, v := range other.Variables {
		e.addVariable(v)
	}
	for _, o := range other.Outputs {
		e.addOutput(o)
	}
}

// overlay folds structured-parse results into the pattern baseline. Entries
// sharing a declaration key are replaced wholesale: when the structured parse
// succeeds its fields are strictly more accurate than the pattern scan.
func (e *Extraction) overlay(structured Extraction) {
	for _, p := range structured.Providers {
		if i := e.providerIndex(p.Name); i != -1 {
			e.Providers[i] = p
		} else {
			e.Providers = append(e.Providers, p)
		}
	}
	for _, m := range structured.Modules {
		if i := e.moduleIndex(m.Name, m.Source); i != -1 {
			e.Modules[i] = m
		} else {
			e.Modules = append(e.Modules, m)
		}
	}
	for _, r := range structured.Resources {
		if i := e.resourceIndex(r.Type, r.Name); i != -1 {
			e.Resources[i] = r
		} else {
			e.Resources = append(e.Resources, r)
		}
	}
	for _, v := range structured.Variables {
		if i := e.variableIndex(v.Name); i != -1 {
			e.Variables[i] = v
		} else {
			e.Variables = append(e.Variables, v)
		}
	}
	for _, o := range structured.Outputs {
		if i := e.outputIndex(o.Name); i != -1 {
			e.Outputs[i] = o
		} else {
			e.Outputs = append(e.Outputs, o)
		}
	}
}

func (e *Extraction) providerIndex(name string) int {
	for i, p := range e.Providers {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func (e *Extraction) moduleIndex(name, source string) int {
	for i, m := range e.Modules {
		if m.Name == name && m.Source == source {
			return i
		}
	}
	return -1
}

func (e *Extraction) resourceIndex(resType, name string) int {
	for i, r := range e.Resources {
		if r.Type == resType && r.Name == name {
			return i
		}
	}
	return -1
}

func (e *Extraction) variableIndex(name string) int {
	for i, v := range e.Variables {
		if v.Name == name {
			return i
		}
	}
	return -1
}

func (e *Extraction) outputIndex(name string) int {
	for i, o := range e.Outputs {
		if o.Name == name {
			return i
		}
	}
	return -1
}

func (e *Extraction) addProvider(p domain.ProviderRef) {
	if i := e.providerIndex(p.Name); i != -1 {
		existing := &e.Providers[i]
		if existing.Source == "" {
			existing.Source = p.Source
		}
		if existing.VersionConstraint == "" {
			existing.VersionConstraint = p.VersionConstraint
		}
		return
	}
	e.Providers = append(e.Providers, p)
}

func (e *Extraction) addModule(m domain.ModuleCall) {
	if i := e.moduleIndex(m.Name, m.Source); i != -1 {
		if e.Modules[i].VersionConstraint == "" {
			e.Modules[i].VersionConstraint = m.VersionConstraint
		}
		return
	}
	e.Modules = append(e.Modules, m)
}

func (e *Extraction) addResource(r domain.Resource) {
	if e.resourceIndex(r.Type, r.Name) == -1 {
		e.Resources = append(e.Resources, r)
	}
}

func (e *Extraction) addVariable(v domain.Variable) {
	if i := e.variableIndex(v.Name); i != -1 {
		existing := &e.Variables[i]
		if existing.Type == "" {
			existing.Type = v.Type
		}
		if existing.Description == "" {
			existing.Description = v.Description
		}
		if existing.Default == "" && v.Default != "" {
			existing.Default = v.Default
			existing.Required = false
		}
		return
	}
	e.Variables = append(e.Variables, v)
}

func (e *Extraction) addOutput(o domain.Output) {
	if i := e.outputIndex(o.Name); i != -1 {
		existing := &e.Outputs[i]
		if existing.Description == "" {
			existing.Description = o.Description
		}
		if existing.ValueExpression == "" {
			existing.ValueExpression = o.ValueExpression
		}
		if o.Sensitive {
			existing.Sensitive = true
		}
		return
	}
	e.Outputs = append(e.Outputs, o)
}
