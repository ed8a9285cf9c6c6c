package querylanguage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry"
	"github.com/quarrydev/quarry/querylanguage"
	"github.com/quarrydev/quarry/schema"
)

func testFunction() *schema.Entity {
	return &schema.Entity{
		Type: schema.Function,
		ID:   7,
		Fields: map[string]any{
			"name":               "parseConfig",
			"module_name":        "config",
			"function_signature": "parseConfig :: FilePath -> IO Config",
			"line_number_start":  int64(10),
			"line_number_end":    int64(32),
			"is_method":          false,
			"raw_string":         nil,
			"types_used":         []any{"Config", "FilePath"},
		},
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cond querylanguage.Condition
		want bool
	}{
		{name: "eq_string", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.EQ, Value: "parseConfig"}, want: true},
		{name: "eq_string_miss", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.EQ, Value: "main"}, want: false},
		{name: "eq_id", cond: querylanguage.Condition{Field: "id", Operator: querylanguage.EQ, Value: float64(7)}, want: true},
		{name: "eq_cross_type", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.EQ, Value: 7}, want: false},
		{name: "ne", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.NE, Value: "main"}, want: true},
		{name: "default_operator_is_eq", cond: querylanguage.Condition{Field: "name", Value: "parseConfig"}, want: true},

		{name: "gt", cond: querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.GT, Value: float64(9)}, want: true},
		{name: "gt_equal_is_false", cond: querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.GT, Value: float64(10)}, want: false},
		{name: "ge_equal_is_true", cond: querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.GE, Value: float64(10)}, want: true},
		{name: "lt", cond: querylanguage.Condition{Field: "line_number_end", Operator: querylanguage.LT, Value: float64(100)}, want: true},
		{name: "le", cond: querylanguage.Condition{Field: "line_number_end", Operator: querylanguage.LE, Value: float64(32)}, want: true},
		{name: "string_ordering", cond: querylanguage.Condition{Field: "module_name", Operator: querylanguage.GT, Value: "api"}, want: true},

		{name: "like_case_sensitive", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.Like, Value: "parse%"}, want: true},
		{name: "like_case_sensitive_miss", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.Like, Value: "Parse%"}, want: false},
		{name: "like_underscore", cond: querylanguage.Condition{Field: "module_name", Operator: querylanguage.Like, Value: "conf_g"}, want: true},
		{name: "like_is_anchored", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.Like, Value: "Config"}, want: false},
		{name: "ilike", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.ILike, Value: "PARSE%"}, want: true},

		{name: "in", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.In, Value: []any{"main", "parseConfig"}}, want: true},
		{name: "in_miss", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.In, Value: []any{"main"}}, want: false},
		{name: "not_in", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.NotIn, Value: []any{"main"}}, want: true},

		{name: "contains_string", cond: querylanguage.Condition{Field: "function_signature", Operator: querylanguage.Contains, Value: "FilePath"}, want: true},
		{name: "contains_list_payload", cond: querylanguage.Condition{Field: "types_used", Operator: querylanguage.Contains, Value: "Config"}, want: true},
		{name: "contains_list_payload_miss", cond: querylanguage.Condition{Field: "types_used", Operator: querylanguage.Contains, Value: "Socket"}, want: false},
		{name: "startswith", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.StartsWith, Value: "parse"}, want: true},
		{name: "endswith", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.EndsWith, Value: "Config"}, want: true},

		{name: "between_inclusive_low", cond: querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.Between, Value: []any{float64(10), float64(20)}}, want: true},
		{name: "between_inclusive_high", cond: querylanguage.Condition{Field: "line_number_end", Operator: querylanguage.Between, Value: []any{float64(1), float64(32)}}, want: true},
		{name: "between_outside", cond: querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.Between, Value: []any{float64(11), float64(20)}}, want: false},

		{name: "is_null_true", cond: querylanguage.Condition{Field: "raw_string", Operator: querylanguage.IsNull, Value: true}, want: true},
		{name: "is_null_false", cond: querylanguage.Condition{Field: "raw_string", Operator: querylanguage.IsNull, Value: false}, want: false},
		{name: "is_not_null", cond: querylanguage.Condition{Field: "name", Operator: querylanguage.IsNull, Value: false}, want: true},

		{name: "null_field_never_ordered", cond: querylanguage.Condition{Field: "raw_string", Operator: querylanguage.StartsWith, Value: "x"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := querylanguage.Match(testFunction(), tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cond    querylanguage.Condition
		wantErr func(error) bool
	}{
		{
			name:    "unknown_field",
			cond:    querylanguage.Condition{Field: "arity", Operator: querylanguage.EQ, Value: 2},
			wantErr: quarry.IsUnknownField,
		},
		{
			name:    "unsupported_operator",
			cond:    querylanguage.Condition{Field: "name", Operator: "regex", Value: ".*"},
			wantErr: quarry.IsUnsupportedOperator,
		},
		{
			name:    "between_non_pair",
			cond:    querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.Between, Value: []any{float64(1)}},
			wantErr: quarry.IsTypeMismatch,
		},
		{
			name:    "between_scalar_bound",
			cond:    querylanguage.Condition{Field: "line_number_start", Operator: querylanguage.Between, Value: float64(5)},
			wantErr: quarry.IsTypeMismatch,
		},
		{
			name:    "in_scalar",
			cond:    querylanguage.Condition{Field: "name", Operator: querylanguage.In, Value: "main"},
			wantErr: quarry.IsTypeMismatch,
		},
		{
			name:    "ordered_on_bool",
			cond:    querylanguage.Condition{Field: "is_method", Operator: querylanguage.GT, Value: true},
			wantErr: quarry.IsTypeMismatch,
		},
		{
			name:    "ordered_cross_type",
			cond:    querylanguage.Condition{Field: "name", Operator: querylanguage.GT, Value: float64(3)},
			wantErr: quarry.IsTypeMismatch,
		},
		{
			name:    "is_null_non_bool",
			cond:    querylanguage.Condition{Field: "raw_string", Operator: querylanguage.IsNull, Value: "yes"},
			wantErr: quarry.IsTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := querylanguage.Match(testFunction(), tt.cond)
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), "got %v", err)
		})
	}
}

func TestMatchAll(t *testing.T) {
	t.Parallel()

	t.Run("empty_conditions_always_match", func(t *testing.T) {
		ok, err := querylanguage.MatchAll(testFunction(), nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("conjunction", func(t *testing.T) {
		ok, err := querylanguage.MatchAll(testFunction(), []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.StartsWith, Value: "parse"},
			{Field: "module_name", Operator: querylanguage.EQ, Value: "config"},
		})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = querylanguage.MatchAll(testFunction(), []querylanguage.Condition{
			{Field: "name", Operator: querylanguage.StartsWith, Value: "parse"},
			{Field: "module_name", Operator: querylanguage.EQ, Value: "api"},
		})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// The between operator must agree with ge+le, and single-element in
// with eq, for every sampled value.
func TestOperatorEquivalences(t *testing.T) {
	t.Parallel()

	samples := []float64{0, 9, 10, 11, 31, 32, 33, 100}
	fn := testFunction()

	t.Run("between_is_ge_and_le", func(t *testing.T) {
		for _, lo := range samples {
			for _, hi := range samples {
				btw, err := querylanguage.Match(fn, querylanguage.Condition{
					Field: "line_number_start", Operator: querylanguage.Between, Value: []any{lo, hi},
				})
				require.NoError(t, err)

				ge, err := querylanguage.Match(fn, querylanguage.Condition{
					Field: "line_number_start", Operator: querylanguage.GE, Value: lo,
				})
				require.NoError(t, err)
				le, err := querylanguage.Match(fn, querylanguage.Condition{
					Field: "line_number_start", Operator: querylanguage.LE, Value: hi,
				})
				require.NoError(t, err)

				assert.Equal(t, ge && le, btw, "bounds [%v, %v]", lo, hi)
			}
		}
	})

	t.Run("single_element_in_is_eq", func(t *testing.T) {
		for _, v := range []any{"parseConfig", "main", float64(7)} {
			in, err := querylanguage.Match(fn, querylanguage.Condition{
				Field: "name", Operator: querylanguage.In, Value: []any{v},
			})
			require.NoError(t, err)
			eq, err := querylanguage.Match(fn, querylanguage.Condition{
				Field: "name", Operator: querylanguage.EQ, Value: v,
			})
			require.NoError(t, err)
			assert.Equal(t, eq, in, "value %v", v)
		}
	})
}
