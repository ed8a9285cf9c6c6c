package querylanguage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/schema"
)

// MatchAll reports whether the entity satisfies every condition. An
// empty condition list always matches.
func MatchAll(e *schema.Entity, conditions []Condition) (bool, error) {
	for _, c := range conditions {
		ok, err := Match(e, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Match applies one condition to one entity record.
func Match(e *schema.Entity, c Condition) (bool, error) {
	field, ok := e.Field(c.Field)
	if !ok {
		return false, quarry.NewUnknownFieldError(string(e.Type), c.Field)
	}
	op := c.Operator
	if op == "" {
		op = EQ
	}
	switch op {
	case EQ:
		return equal(field, c.Value), nil
	case NE:
		return !equal(field, c.Value), nil
	case GT, LT, GE, LE:
		return ordered(op, c, field)
	case Like:
		return wildcard(op, c, field, false)
	case ILike:
		return wildcard(op, c, field, true)
	case In, NotIn:
		return membership(op, c, field)
	case Contains:
		return containsValue(c, field)
	case StartsWith:
		s, target, ok, err := stringPair(op, c, field)
		if err != nil || !ok {
			return false, err
		}
		return strings.HasPrefix(s, target), nil
	case EndsWith:
		s, target, ok, err := stringPair(op, c, field)
		if err != nil || !ok {
			return false, err
		}
		return strings.HasSuffix(s, target), nil
	case Between:
		return between(c, field)
	case IsNull:
		wantNull, ok := c.Value.(bool)
		if !ok {
			return false, quarry.NewTypeMismatchError(string(op), c.Field, "bool", c.Value)
		}
		return (field == nil) == wantNull, nil
	}
	return false, quarry.NewUnsupportedOperatorError(string(c.Operator))
}

// equal compares two scalars, bridging the integer widths of store
// columns and the float64 numbers JSON decoding produces.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return false
}

func ordered(op Operator, c Condition, field any) (bool, error) {
	if field == nil || c.Value == nil {
		return false, nil
	}
	var cmp int
	switch {
	case isNumeric(field) && isNumeric(c.Value):
		fa, _ := toFloat(field)
		fb, _ := toFloat(c.Value)
		switch {
		case fa < fb:
			cmp = -1
		case fa > fb:
			cmp = 1
		}
	case isString(field) && isString(c.Value):
		cmp = strings.Compare(field.(string), c.Value.(string))
	default:
		return false, quarry.NewTypeMismatchError(string(op), c.Field, "orderable value", c.Value)
	}
	switch op {
	case GT:
		return cmp > 0, nil
	case LT:
		return cmp < 0, nil
	case GE:
		return cmp >= 0, nil
	}
	return cmp <= 0, nil
}

func wildcard(op Operator, c Condition, field any, fold bool) (bool, error) {
	pattern, ok := c.Value.(string)
	if !ok {
		return false, quarry.NewTypeMismatchError(string(op), c.Field, "string pattern", c.Value)
	}
	if field == nil {
		return false, nil
	}
	s, ok := field.(string)
	if !ok {
		return false, quarry.NewTypeMismatchError(string(op), c.Field, "string field", field)
	}
	re, err := compilePattern(pattern, fold)
	if err != nil {
		return false, quarry.NewTypeMismatchError(string(op), c.Field, "valid pattern", c.Value)
	}
	return re.MatchString(s), nil
}

// compilePattern translates a SQL wildcard pattern (% = any run,
// _ = any single char) into an anchored regular expression.
func compilePattern(pattern string, fold bool) (*regexp.Regexp, error) {
	var sb strings.Builder
	if fold {
		sb.WriteString("(?is)")
	} else {
		sb.WriteString("(?s)")
	}
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

func membership(op Operator, c Condition, field any) (bool, error) {
	list, ok := c.Value.([]any)
	if !ok {
		return false, quarry.NewTypeMismatchError(string(op), c.Field, "list", c.Value)
	}
	found := false
	for _, el := range list {
		if equal(field, el) {
			found = true
			break
		}
	}
	if op == NotIn {
		return !found, nil
	}
	return found, nil
}

// containsValue tests substring containment on string fields and
// element containment on structured list payloads, where each element
// matches if its string form contains the target.
func containsValue(c Condition, field any) (bool, error) {
	target, ok := c.Value.(string)
	if !ok {
		return false, quarry.NewTypeMismatchError(string(Contains), c.Field, "string", c.Value)
	}
	switch f := field.(type) {
	case nil:
		return false, nil
	case string:
		return strings.Contains(f, target), nil
	case []any:
		for _, el := range f {
			if strings.Contains(fmt.Sprintf("%v", el), target) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, quarry.NewTypeMismatchError(string(Contains), c.Field, "string or list field", field)
}

func stringPair(op Operator, c Condition, field any) (s, target string, ok bool, err error) {
	target, tok := c.Value.(string)
	if !tok {
		return "", "", false, quarry.NewTypeMismatchError(string(op), c.Field, "string", c.Value)
	}
	if field == nil {
		return "", "", false, nil
	}
	s, sok := field.(string)
	if !sok {
		return "", "", false, quarry.NewTypeMismatchError(string(op), c.Field, "string field", field)
	}
	return s, target, true, nil
}

func between(c Condition, field any) (bool, error) {
	pair, ok := c.Value.([]any)
	if !ok || len(pair) != 2 {
		return false, quarry.NewTypeMismatchError(string(Between), c.Field, "two-element bound", c.Value)
	}
	lower, err := ordered(GE, Condition{Field: c.Field, Value: pair[0]}, field)
	if err != nil {
		return false, err
	}
	if !lower {
		return false, nil
	}
	return ordered(LE, Condition{Field: c.Field, Value: pair[1]}, field)
}

func isNumeric(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
