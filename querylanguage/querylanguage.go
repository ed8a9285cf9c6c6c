package querylanguage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/schema"
)

// Operator names one comparison in the fixed operator set.
type Operator string

// The supported operators. Names are case-sensitive and form part of
// the wire contract.
const (
	EQ         Operator = "eq"
	NE         Operator = "ne"
	GT         Operator = "gt"
	LT         Operator = "lt"
	GE         Operator = "ge"
	LE         Operator = "le"
	Like       Operator = "like"
	ILike      Operator = "ilike"
	In         Operator = "in"
	NotIn      Operator = "not_in"
	Contains   Operator = "contains"
	StartsWith Operator = "startswith"
	EndsWith   Operator = "endswith"
	Between    Operator = "between"
	IsNull     Operator = "is_null"
)

// Valid reports whether op is in the supported operator set.
func (op Operator) Valid() bool {
	switch op {
	case EQ, NE, GT, LT, GE, LE, Like, ILike, In, NotIn,
		Contains, StartsWith, EndsWith, Between, IsNull:
		return true
	}
	return false
}

// Condition applies one operator to one field of one record.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// UnmarshalJSON decodes a condition, defaulting an omitted operator
// to eq.
func (c *Condition) UnmarshalJSON(data []byte) error {
	type condition Condition
	var dec condition
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.Operator == "" {
		dec.Operator = EQ
	}
	*c = Condition(dec)
	return nil
}

// Descriptor is the recursive query shape interpreted by the query
// engine. At the top level Type names an entity type; in a join entry
// it names the relation role the join plays under its parent.
type Descriptor struct {
	Type       string       `json:"type"`
	Conditions []Condition  `json:"conditions,omitempty"`
	Joins      []Descriptor `json:"joins,omitempty"`
}

// Decode parses a JSON-encoded query descriptor.
func Decode(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("querylanguage: decode descriptor: %w", err)
	}
	return &d, nil
}

// Validate resolves the descriptor against the static schema: the
// top-level type must be a declared entity type, every condition must
// name a declared field and a supported operator, and every join role
// must resolve in the relation table under its parent type.
func (d *Descriptor) Validate() error {
	typ := schema.EntityType(d.Type)
	if !typ.Valid() {
		return quarry.NewUnknownRelationError("", d.Type)
	}
	return d.validate(typ)
}

func (d *Descriptor) validate(typ schema.EntityType) error {
	for _, c := range d.Conditions {
		op := c.Operator
		if op == "" {
			op = EQ
		}
		if !op.Valid() {
			return quarry.NewUnsupportedOperatorError(string(op))
		}
		if _, ok := schema.LookupField(typ, c.Field); !ok {
			return quarry.NewUnknownFieldError(string(typ), c.Field)
		}
	}
	for i := range d.Joins {
		join := &d.Joins[i]
		rel, ok := schema.ResolveRelation(typ, join.Type)
		if !ok {
			return quarry.NewUnknownRelationError(string(typ), join.Type)
		}
		if err := join.validate(rel.Child); err != nil {
			return err
		}
	}
	return nil
}

// String renders the descriptor in a compact, readable form, useful in
// logs and test failures.
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.render(&sb)
	return sb.String()
}

func (d *Descriptor) render(sb *strings.Builder) {
	sb.WriteString(d.Type)
	if len(d.Conditions) > 0 {
		sb.WriteString("[")
		for i, c := range d.Conditions {
			if i > 0 {
				sb.WriteString(" && ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteString("]")
	}
	for _, join := range d.Joins {
		sb.WriteString(" has_edge(")
		join.render(sb)
		sb.WriteString(")")
	}
}

// String renders the condition in a compact, readable form.
func (c Condition) String() string {
	switch c.Operator {
	case EQ, "":
		return fmt.Sprintf("%s == %s", c.Field, renderValue(c.Value))
	case NE:
		return fmt.Sprintf("%s != %s", c.Field, renderValue(c.Value))
	case GT:
		return fmt.Sprintf("%s > %s", c.Field, renderValue(c.Value))
	case LT:
		return fmt.Sprintf("%s < %s", c.Field, renderValue(c.Value))
	case GE:
		return fmt.Sprintf("%s >= %s", c.Field, renderValue(c.Value))
	case LE:
		return fmt.Sprintf("%s <= %s", c.Field, renderValue(c.Value))
	case In:
		return fmt.Sprintf("%s in %s", c.Field, renderValue(c.Value))
	case NotIn:
		return fmt.Sprintf("%s not in %s", c.Field, renderValue(c.Value))
	case IsNull:
		if b, _ := c.Value.(bool); b {
			return fmt.Sprintf("%s == nil", c.Field)
		}
		return fmt.Sprintf("%s != nil", c.Field)
	case StartsWith:
		return fmt.Sprintf("has_prefix(%s, %s)", c.Field, renderValue(c.Value))
	case EndsWith:
		return fmt.Sprintf("has_suffix(%s, %s)", c.Field, renderValue(c.Value))
	case Between:
		if pair, ok := c.Value.([]any); ok && len(pair) == 2 {
			return fmt.Sprintf("between(%s, %s, %s)", c.Field, renderValue(pair[0]), renderValue(pair[1]))
		}
		return fmt.Sprintf("between(%s, %s)", c.Field, renderValue(c.Value))
	default:
		return fmt.Sprintf("%s(%s, %s)", c.Operator, c.Field, renderValue(c.Value))
	}
}

func renderValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = renderValue(el)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
