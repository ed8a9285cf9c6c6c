package query

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

// calleeRelation walks function_dependency caller-to-callee. The
// relation table only exposes the reverse role (calling_function), so
// the forward walk is declared here.
var calleeRelation = schema.Relation{
	Role:   "called",
	Parent: schema.Function,
	Child:  schema.Function,
	Kind:   schema.Dependency,
	Edge:   schema.FunctionDependency,
}

// Modules returns every module, ascending by id.
func (in *Interpreter) Modules(ctx context.Context) ([]*schema.Entity, error) {
	return in.store.All(ctx, schema.Module, nil)
}

// ModuleByName returns the module with the exact name, or nil when no
// such module exists.
func (in *Interpreter) ModuleByName(ctx context.Context, name string) (*schema.Entity, error) {
	mods, err := in.store.All(ctx, schema.Module, []querylanguage.Condition{
		{Field: "name", Operator: querylanguage.EQ, Value: name},
	})
	if err != nil || len(mods) == 0 {
		return nil, err
	}
	return mods[0], nil
}

// FunctionsByModule returns the functions contained in a module.
func (in *Interpreter) FunctionsByModule(ctx context.Context, moduleID int64) ([]*schema.Entity, error) {
	rel, _ := schema.ResolveRelation(schema.Module, "function")
	return in.store.ByParent(ctx, rel, moduleID)
}

// FunctionRef is the compact function reference used in detail and
// call-graph payloads.
type FunctionRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Module string `json:"module,omitempty"`
}

// NestedRef identifies one nested function.
type NestedRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

// FunctionDetails is the full per-function view: the function row with
// its module name, nested functions, callees, and callers.
type FunctionDetails struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Signature      string        `json:"signature"`
	RawString      string        `json:"raw_string"`
	SrcLoc         string        `json:"src_loc"`
	Module         string        `json:"module,omitempty"`
	WhereFunctions []NestedRef   `json:"where_functions"`
	Calls          []FunctionRef `json:"calls"`
	CalledBy       []FunctionRef `json:"called_by"`
}

// FunctionDetails returns the detailed view of one function, or nil
// when the id does not resolve.
func (in *Interpreter) FunctionDetails(ctx context.Context, id int64) (*FunctionDetails, error) {
	fn, err := in.store.ByID(ctx, schema.Function, id)
	if err != nil || fn == nil {
		return nil, err
	}
	module, err := in.moduleName(ctx, fn)
	if err != nil {
		return nil, err
	}
	details := &FunctionDetails{
		ID:             fn.ID,
		Name:           fn.String("name"),
		Signature:      fn.String("function_signature"),
		RawString:      fn.String("raw_string"),
		SrcLoc:         fn.String("src_loc"),
		Module:         module,
		WhereFunctions: []NestedRef{},
		Calls:          []FunctionRef{},
		CalledBy:       []FunctionRef{},
	}

	whereRel, _ := schema.ResolveRelation(schema.Function, "where_function")
	nested, err := in.store.ByParent(ctx, whereRel, id)
	if err != nil {
		return nil, err
	}
	for _, wf := range nested {
		details.WhereFunctions = append(details.WhereFunctions, NestedRef{
			ID:        wf.ID,
			Name:      wf.String("name"),
			Signature: wf.String("function_signature"),
		})
	}

	callees, err := in.store.ByParent(ctx, calleeRelation, id)
	if err != nil {
		return nil, err
	}
	details.Calls, err = in.refs(ctx, callees)
	if err != nil {
		return nil, err
	}

	callersRel, _ := schema.ResolveRelation(schema.Function, "calling_function")
	callers, err := in.store.ByParent(ctx, callersRel, id)
	if err != nil {
		return nil, err
	}
	details.CalledBy, err = in.refs(ctx, callers)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (in *Interpreter) refs(ctx context.Context, functions []*schema.Entity) ([]FunctionRef, error) {
	out := make([]FunctionRef, 0, len(functions))
	for _, fn := range functions {
		module, err := in.moduleName(ctx, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, FunctionRef{ID: fn.ID, Name: fn.String("name"), Module: module})
	}
	return out, nil
}

func (in *Interpreter) moduleName(ctx context.Context, e *schema.Entity) (string, error) {
	if e.IsNull("module_id") {
		return "", nil
	}
	mod, err := in.store.ByID(ctx, schema.Module, e.Int("module_id"))
	if err != nil || mod == nil {
		return "", err
	}
	return mod.String("name"), nil
}

// CallCount pairs a function with its incoming call count.
type CallCount struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Module string `json:"module"`
	Calls  int    `json:"calls"`
}

// MostCalledFunctions returns the functions with the most incoming
// call edges, descending by count with ascending id as tie-break. A
// non-positive limit defaults to 10.
func (in *Interpreter) MostCalledFunctions(ctx context.Context, limit int) ([]CallCount, error) {
	if limit <= 0 {
		limit = 10
	}
	pairs, err := in.store.Edges(ctx, schema.FunctionDependency)
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int)
	for _, p := range pairs {
		counts[p.Target]++
	}
	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]CallCount, 0, len(ids))
	for _, id := range ids {
		fn, err := in.store.ByID(ctx, schema.Function, id)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			continue
		}
		module, err := in.moduleName(ctx, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, CallCount{ID: id, Name: fn.String("name"), Module: module, Calls: counts[id]})
	}
	return out, nil
}

// SearchFunctionContent returns the functions whose raw text contains
// the pattern, case-insensitively.
func (in *Interpreter) SearchFunctionContent(ctx context.Context, pattern string) ([]*schema.Entity, error) {
	return in.Execute(ctx, &querylanguage.Descriptor{
		Type: string(schema.Function),
		Conditions: []querylanguage.Condition{
			{Field: "raw_string", Operator: querylanguage.ILike, Value: "%" + pattern + "%"},
		},
	})
}

// CallGraphNode is one node of the nested callee tree.
type CallGraphNode struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Module string          `json:"module"`
	Calls  []CallGraphNode `json:"calls,omitempty"`
}

// FunctionCallGraph returns the nested callee tree rooted at a
// function, expanded to the given depth. Depth bounds the recursion;
// self-calls are skipped. Returns nil when depth is non-positive or
// the id does not resolve.
func (in *Interpreter) FunctionCallGraph(ctx context.Context, id int64, depth int) (*CallGraphNode, error) {
	if depth < 1 {
		return nil, nil
	}
	fn, err := in.store.ByID(ctx, schema.Function, id)
	if err != nil || fn == nil {
		return nil, err
	}
	module, err := in.moduleNameOrUnknown(ctx, fn)
	if err != nil {
		return nil, err
	}
	node := &CallGraphNode{ID: fn.ID, Name: fn.String("name"), Module: module}
	callees, err := in.store.ByParent(ctx, calleeRelation, id)
	if err != nil {
		return nil, err
	}
	for _, callee := range callees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if callee.ID == id {
			continue
		}
		module, err := in.moduleNameOrUnknown(ctx, callee)
		if err != nil {
			return nil, err
		}
		child := CallGraphNode{
			ID:     callee.ID,
			Name:   callee.String("name"),
			Module: module,
		}
		if depth > 1 {
			sub, err := in.FunctionCallGraph(ctx, callee.ID, depth-1)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				child.Calls = sub.Calls
			}
		}
		node.Calls = append(node.Calls, child)
	}
	return node, nil
}

// moduleNameOrUnknown degrades a missing module (null or dangling
// module_id) to "Unknown". Store errors are returned, not masked.
func (in *Interpreter) moduleNameOrUnknown(ctx context.Context, e *schema.Entity) (string, error) {
	name, err := in.moduleName(ctx, e)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "Unknown", nil
	}
	return name, nil
}
