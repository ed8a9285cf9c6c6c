package schema

// EntityType identifies one kind of record in the code-entity graph.
type EntityType string

// The closed catalog of entity types.
const (
	Module               EntityType = "module"
	Function             EntityType = "function"
	WhereFunction        EntityType = "where_function"
	FunctionCalled       EntityType = "function_called"
	Import               EntityType = "import"
	TypeDef              EntityType = "type"
	Constructor          EntityType = "constructor"
	Field                EntityType = "field"
	Class                EntityType = "class"
	Instance             EntityType = "instance"
	InstanceFunction     EntityType = "instance_function"
	Trait                EntityType = "trait"
	ImplBlock            EntityType = "impl_block"
	Constant             EntityType = "constant"
	TraitMethodSignature EntityType = "trait_method_signature"
)

// Types returns the full entity-type catalog in declaration order.
func Types() []EntityType {
	return []EntityType{
		Module, Function, WhereFunction, FunctionCalled, Import,
		TypeDef, Constructor, Field, Class, Instance, InstanceFunction,
		Trait, ImplBlock, Constant, TraitMethodSignature,
	}
}

// Valid reports whether t is a declared entity type.
func (t EntityType) Valid() bool {
	_, ok := fieldCatalog[t]
	return ok
}

// Table returns the relational table name backing the entity type.
// Table names coincide with the type names.
func (t EntityType) Table() string {
	return string(t)
}

// String implements fmt.Stringer.
func (t EntityType) String() string {
	return string(t)
}

// Entity is one typed, identified record in the code graph. Fields holds
// the record's named attributes; values are int64, string, bool, nil, or
// an opaque structured payload decoded from a JSON column.
type Entity struct {
	Type   EntityType
	ID     int64
	Fields map[string]any
}

// Field returns the named field value and whether the field is declared
// for the entity's type. The id field is always present.
func (e *Entity) Field(name string) (any, bool) {
	if name == FieldID {
		return e.ID, true
	}
	if _, ok := LookupField(e.Type, name); !ok {
		return nil, false
	}
	return e.Fields[name], true
}

// String returns the named field as a string, or "" if the field is
// absent, null, or not a string.
func (e *Entity) String(name string) string {
	v, _ := e.Field(name)
	s, _ := v.(string)
	return s
}

// Int returns the named field as an int64, or 0 if the field is absent,
// null, or not an integer.
func (e *Entity) Int(name string) int64 {
	v, _ := e.Field(name)
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// Bool returns the named field as a bool, or false if the field is
// absent, null, or not a boolean.
func (e *Entity) Bool(name string) bool {
	v, _ := e.Field(name)
	b, _ := v.(bool)
	return b
}

// IsNull reports whether the named field is declared but holds no value.
func (e *Entity) IsNull(name string) bool {
	v, ok := e.Field(name)
	return ok && v == nil
}
