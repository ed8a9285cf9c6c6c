package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// The fixed pattern kinds.
const (
	PatternFunctionCall    = "function_call"
	PatternTypeUsage       = "type_usage"
	PatternCodeStructure   = "code_structure"
	PatternStructImplTrait = "struct_impl_trait"
	PatternTraitImplCall   = "function_calls_method_on_trait_impl"
)

// Pattern is the wire shape of a pattern-match request. Type selects
// the pattern kind; the remaining fields parameterize it.
type Pattern struct {
	Type string `json:"type"`

	// function_call: Callee names the called function, Caller
	// optionally restricts the calling function's name.
	Caller string `json:"caller,omitempty"`
	Callee string `json:"callee,omitempty"`

	// type_usage: TypeName is the type to look for, UsageIn the entity
	// type to search. An empty UsageIn searches functions.
	TypeName string `json:"type_name,omitempty"`
	UsageIn  string `json:"usage_in,omitempty"`

	// code_structure: StructureType selects the structural shape.
	StructureType string `json:"structure_type,omitempty"`

	// struct_impl_trait: StructName and TraitName each optionally
	// restrict the impl blocks. TraitName also restricts the trait of
	// function_calls_method_on_trait_impl, whose caller restriction is
	// CallerName.
	StructName string `json:"struct_name,omitempty"`
	TraitName  string `json:"trait_name,omitempty"`
	CallerName string `json:"caller_name,omitempty"`
}

// DecodePattern parses a JSON-encoded pattern.
func DecodePattern(data []byte) (*Pattern, error) {
	var p Pattern
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("query: decode pattern: %w", err)
	}
	return &p, nil
}

// CallMatch pairs one caller, a function or a nested function, with
// the call sites that matched the pattern.
type CallMatch struct {
	Caller    *schema.Entity
	CallSites []*schema.Entity
}

// UsageMatch records one entity mentioning the searched type.
type UsageMatch struct {
	Entity   *schema.Entity
	TypeName string
}

// StructureMatch pairs a function with its nested functions.
type StructureMatch struct {
	Function *schema.Entity
	Nested   []*schema.Entity
}

// TraitImplMatch records one impl block binding a struct to a trait.
type TraitImplMatch struct {
	Struct    string
	Trait     string
	ImplBlock *schema.Entity
}

// TraitCallMatch records one function defined in an impl block of a
// matched trait.
type TraitCallMatch struct {
	Function *schema.Entity
	Struct   string
	Trait    string
}

// PatternResult carries the matches of one pattern kind; only the
// slice of the requested kind is populated.
type PatternResult struct {
	Calls      []CallMatch
	Usages     []UsageMatch
	Structures []StructureMatch
	Impls      []TraitImplMatch
	TraitCalls []TraitCallMatch
}

// MatchPattern evaluates one of the fixed pattern kinds.
func (in *Interpreter) MatchPattern(ctx context.Context, p *Pattern) (*PatternResult, error) {
	switch p.Type {
	case PatternFunctionCall:
		calls, err := in.matchFunctionCall(ctx, p)
		if err != nil {
			return nil, err
		}
		return &PatternResult{Calls: calls}, nil
	case PatternTypeUsage:
		usages, err := in.matchTypeUsage(ctx, p)
		if err != nil {
			return nil, err
		}
		return &PatternResult{Usages: usages}, nil
	case PatternCodeStructure:
		structures, err := in.matchCodeStructure(ctx, p)
		if err != nil {
			return nil, err
		}
		return &PatternResult{Structures: structures}, nil
	case PatternStructImplTrait:
		impls, err := in.matchStructImplTrait(ctx, p)
		if err != nil {
			return nil, err
		}
		return &PatternResult{Impls: impls}, nil
	case PatternTraitImplCall:
		calls, err := in.matchTraitImplCall(ctx, p)
		if err != nil {
			return nil, err
		}
		return &PatternResult{TraitCalls: calls}, nil
	}
	return nil, quarry.NewUnknownPatternKindError(p.Type)
}

// matchFunctionCall finds callers owning a call-site record for the
// callee. Call sites hang off either a function or a nested function,
// so both owner types are searched.
func (in *Interpreter) matchFunctionCall(ctx context.Context, p *Pattern) ([]CallMatch, error) {
	var siteConds []querylanguage.Condition
	if p.Callee != "" {
		siteConds = append(siteConds, querylanguage.Condition{
			Field: "function_name", Operator: querylanguage.EQ, Value: p.Callee,
		})
	}
	var matches []CallMatch
	for _, typ := range []schema.EntityType{schema.Function, schema.WhereFunction} {
		d := &querylanguage.Descriptor{
			Type:  string(typ),
			Joins: []querylanguage.Descriptor{{Type: "called_function", Conditions: siteConds}},
		}
		if p.Caller != "" {
			d.Conditions = []querylanguage.Condition{{
				Field: "name", Operator: querylanguage.EQ, Value: p.Caller,
			}}
		}
		callers, err := in.Execute(ctx, d)
		if err != nil {
			return nil, err
		}
		rel, _ := schema.ResolveRelation(typ, "called_function")
		for _, caller := range callers {
			sites, err := in.store.ByParent(ctx, rel, caller.ID)
			if err != nil {
				return nil, err
			}
			matched := make([]*schema.Entity, 0, len(sites))
			for _, site := range sites {
				ok, err := querylanguage.MatchAll(site, siteConds)
				if err != nil {
					return nil, err
				}
				if ok {
					matched = append(matched, site)
				}
			}
			matches = append(matches, CallMatch{Caller: caller, CallSites: matched})
		}
	}
	return matches, nil
}

// typeUsageFields are the per-entity fields scanned for a type mention:
// signatures, raw source text, and structured type payloads.
var typeUsageFields = []string{
	"function_signature", "raw_string", "raw_code", "src_code",
	"input_types", "output_types", "types_used", "fields",
	"field_type_raw", "field_type_structure", "const_type",
}

func (in *Interpreter) matchTypeUsage(ctx context.Context, p *Pattern) ([]UsageMatch, error) {
	if p.TypeName == "" {
		return nil, nil
	}
	usageIn := p.UsageIn
	if usageIn == "" {
		usageIn = string(schema.Function)
	}
	entities, err := in.Execute(ctx, &querylanguage.Descriptor{Type: usageIn})
	if err != nil {
		return nil, err
	}
	var matches []UsageMatch
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if mentionsType(e, p.TypeName) {
			matches = append(matches, UsageMatch{Entity: e, TypeName: p.TypeName})
		}
	}
	return matches, nil
}

// mentionsType reports whether any signature, raw text, or type payload
// field of e contains name, case-insensitively.
func mentionsType(e *schema.Entity, name string) bool {
	needle := strings.ToLower(name)
	for _, field := range typeUsageFields {
		v, ok := e.Field(field)
		if !ok || v == nil {
			continue
		}
		text, isString := v.(string)
		if !isString {
			text = fmt.Sprintf("%v", v)
		}
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// matchStructImplTrait lists the impl blocks binding structs to traits,
// optionally restricted by struct name or trait name.
func (in *Interpreter) matchStructImplTrait(ctx context.Context, p *Pattern) ([]TraitImplMatch, error) {
	var conds []querylanguage.Condition
	if p.StructName != "" {
		conds = append(conds, querylanguage.Condition{
			Field: "struct_name", Operator: querylanguage.EQ, Value: p.StructName,
		})
	}
	if p.TraitName != "" {
		conds = append(conds, querylanguage.Condition{
			Field: "trait_name", Operator: querylanguage.EQ, Value: p.TraitName,
		})
	}
	impls, err := in.Execute(ctx, &querylanguage.Descriptor{
		Type:       string(schema.ImplBlock),
		Conditions: conds,
	})
	if err != nil {
		return nil, err
	}
	matches := make([]TraitImplMatch, 0, len(impls))
	for _, impl := range impls {
		matches = append(matches, TraitImplMatch{
			Struct:    impl.String("struct_name"),
			Trait:     impl.String("trait_name"),
			ImplBlock: impl,
		})
	}
	return matches, nil
}

// matchTraitImplCall finds the functions defined inside impl blocks of
// a trait: trait to impl block to function, each hop through the
// relation table.
func (in *Interpreter) matchTraitImplCall(ctx context.Context, p *Pattern) ([]TraitCallMatch, error) {
	var traitConds []querylanguage.Condition
	if p.TraitName != "" {
		traitConds = append(traitConds, querylanguage.Condition{
			Field: "name", Operator: querylanguage.EQ, Value: p.TraitName,
		})
	}
	traits, err := in.Execute(ctx, &querylanguage.Descriptor{
		Type:       string(schema.Trait),
		Conditions: traitConds,
	})
	if err != nil {
		return nil, err
	}
	var callerConds []querylanguage.Condition
	if p.CallerName != "" {
		callerConds = append(callerConds, querylanguage.Condition{
			Field: "name", Operator: querylanguage.EQ, Value: p.CallerName,
		})
	}
	implRel, _ := schema.ResolveRelation(schema.Trait, "impl_block")
	fnRel, _ := schema.ResolveRelation(schema.ImplBlock, "function")
	var matches []TraitCallMatch
	for _, trait := range traits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		impls, err := in.store.ByParent(ctx, implRel, trait.ID)
		if err != nil {
			return nil, err
		}
		for _, impl := range impls {
			functions, err := in.store.ByParent(ctx, fnRel, impl.ID)
			if err != nil {
				return nil, err
			}
			for _, fn := range functions {
				ok, err := querylanguage.MatchAll(fn, callerConds)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				matches = append(matches, TraitCallMatch{
					Function: fn,
					Struct:   impl.String("struct_name"),
					Trait:    trait.String("name"),
				})
			}
		}
	}
	return matches, nil
}

func (in *Interpreter) matchCodeStructure(ctx context.Context, p *Pattern) ([]StructureMatch, error) {
	if p.StructureType != "nested_function" {
		return nil, quarry.NewUnknownPatternKindError(p.StructureType)
	}
	functions, err := in.Execute(ctx, &querylanguage.Descriptor{
		Type:  string(schema.Function),
		Joins: []querylanguage.Descriptor{{Type: "where_function"}},
	})
	if err != nil {
		return nil, err
	}
	rel, _ := schema.ResolveRelation(schema.Function, "where_function")
	matches := make([]StructureMatch, 0, len(functions))
	for _, fn := range functions {
		nested, err := in.store.ByParent(ctx, rel, fn.ID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, StructureMatch{Function: fn, Nested: nested})
	}
	return matches, nil
}
