package schema

import "github.com/go-openapi/inflect"

// RelationKind classifies how a relation is realized in the store.
type RelationKind uint8

// Relation kinds.
const (
	// Containment links a parent to the child rows holding its foreign key.
	Containment RelationKind = iota + 1

	// Inverse walks a containment relation child-to-parent; the foreign
	// key lives on the parent side of the join.
	Inverse

	// NestedDefinition links a function to its function-local functions.
	NestedDefinition

	// CallSite links a function or nested function to the call records
	// made inside its body.
	CallSite

	// Dependency walks a bare (source, target) edge set.
	Dependency
)

// String implements fmt.Stringer.
func (k RelationKind) String() string {
	switch k {
	case Containment:
		return "containment"
	case Inverse:
		return "inverse"
	case NestedDefinition:
		return "nested_definition"
	case CallSite:
		return "call_site"
	case Dependency:
		return "dependency"
	}
	return "invalid"
}

// Edge describes a dependency edge set: a deduplicated many-to-many
// (source, target) id pair table over a single entity type.
type Edge struct {
	Name         string
	Node         EntityType
	SourceColumn string
	TargetColumn string
}

// The two dependency edge sets of the graph.
var (
	// FunctionDependency records caller_id -> callee_id call edges.
	FunctionDependency = Edge{
		Name:         "function_dependency",
		Node:         Function,
		SourceColumn: "caller_id",
		TargetColumn: "callee_id",
	}

	// TypeDependency records dependent_id -> dependency_id type edges.
	TypeDependency = Edge{
		Name:         "type_dependency",
		Node:         TypeDef,
		SourceColumn: "dependent_id",
		TargetColumn: "dependency_id",
	}
)

// EdgeByName resolves a dependency edge set by its table name.
func EdgeByName(name string) (Edge, bool) {
	switch name {
	case FunctionDependency.Name:
		return FunctionDependency, true
	case TypeDependency.Name:
		return TypeDependency, true
	}
	return Edge{}, false
}

// Relation is one entry of the static relation table: a declared, named
// association between a parent entity type and a child entity type,
// addressed in query descriptors by its role name.
type Relation struct {
	Role   string
	Parent EntityType
	Child  EntityType
	Kind   RelationKind

	// ForeignKey is the column joining the two sides. For Containment,
	// NestedDefinition, and CallSite it lives on the child; for Inverse
	// it lives on the parent.
	ForeignKey string

	// Edge and Reversed apply to Dependency relations only. Reversed
	// walks the edge set target-to-source (e.g. callee to its callers).
	Edge     Edge
	Reversed bool
}

type relationKey struct {
	parent EntityType
	role   string
}

// relationTable is the closed set of join roles, keyed by the parent
// type a join is nested under and the role string of the descriptor.
var relationTable = map[relationKey]Relation{
	{Module, "function"}:               {Role: "function", Parent: Module, Child: Function, Kind: Containment, ForeignKey: "module_id"},
	{Module, "import"}:                 {Role: "import", Parent: Module, Child: Import, Kind: Containment, ForeignKey: "module_id"},
	{Module, "type"}:                   {Role: "type", Parent: Module, Child: TypeDef, Kind: Containment, ForeignKey: "module_id"},
	{Module, "class"}:                  {Role: "class", Parent: Module, Child: Class, Kind: Containment, ForeignKey: "module_id"},
	{Module, "instance"}:               {Role: "instance", Parent: Module, Child: Instance, Kind: Containment, ForeignKey: "module_id"},
	{Module, "trait"}:                  {Role: "trait", Parent: Module, Child: Trait, Kind: Containment, ForeignKey: "module_id"},
	{Module, "trait_method_signature"}: {Role: "trait_method_signature", Parent: Module, Child: TraitMethodSignature, Kind: Containment, ForeignKey: "module_id"},
	{Module, "impl_block"}:             {Role: "impl_block", Parent: Module, Child: ImplBlock, Kind: Containment, ForeignKey: "module_id"},
	{Module, "constant"}:               {Role: "constant", Parent: Module, Child: Constant, Kind: Containment, ForeignKey: "module_id"},

	{Function, "module"}:            {Role: "module", Parent: Function, Child: Module, Kind: Inverse, ForeignKey: "module_id"},
	{Function, "where_function"}:    {Role: "where_function", Parent: Function, Child: WhereFunction, Kind: NestedDefinition, ForeignKey: "parent_function_id"},
	{Function, "called_function"}:   {Role: "called_function", Parent: Function, Child: FunctionCalled, Kind: CallSite, ForeignKey: "function_id"},
	{Function, "calling_function"}:  {Role: "calling_function", Parent: Function, Child: Function, Kind: Dependency, Edge: FunctionDependency, Reversed: true},
	{Function, "instance_function"}: {Role: "instance_function", Parent: Function, Child: InstanceFunction, Kind: Containment, ForeignKey: "function_id"},

	{WhereFunction, "called_function"}: {Role: "called_function", Parent: WhereFunction, Child: FunctionCalled, Kind: CallSite, ForeignKey: "where_function_id"},

	{TypeDef, "constructor"}:        {Role: "constructor", Parent: TypeDef, Child: Constructor, Kind: Containment, ForeignKey: "type_id"},
	{Constructor, "field"}:          {Role: "field", Parent: Constructor, Child: Field, Kind: Containment, ForeignKey: "constructor_id"},
	{Instance, "instance_function"}: {Role: "instance_function", Parent: Instance, Child: InstanceFunction, Kind: Containment, ForeignKey: "instance_id"},

	{Trait, "trait_method_signature"}: {Role: "trait_method_signature", Parent: Trait, Child: TraitMethodSignature, Kind: Containment, ForeignKey: "trait_id"},
	{Trait, "impl_block"}:             {Role: "impl_block", Parent: Trait, Child: ImplBlock, Kind: Containment, ForeignKey: "trait_id"},
	{ImplBlock, "function"}:           {Role: "function", Parent: ImplBlock, Child: Function, Kind: Containment, ForeignKey: "impl_block_id"},
}

// ResolveRelation resolves a join role declared under a parent entity
// type against the static relation table. Plural role spellings resolve
// to their singular entry.
func ResolveRelation(parent EntityType, role string) (Relation, bool) {
	if rel, ok := relationTable[relationKey{parent, role}]; ok {
		return rel, true
	}
	rel, ok := relationTable[relationKey{parent, inflect.Singularize(role)}]
	return rel, ok
}

// RelationsOf returns every relation declared with the given parent type.
func RelationsOf(parent EntityType) []Relation {
	var rels []Relation
	for key, rel := range relationTable {
		if key.parent == parent {
			rels = append(rels, rel)
		}
	}
	return rels
}
