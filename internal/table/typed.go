package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Typed is a Raw table with one inferred Column per header entry and every
// field coerced to its column's type. It is immutable once built.
type Typed struct {
	Columns []Column
	Rows    [][]Value
}

// BuildTyped coerces every field of raw to the inferred column types.
// Inference sampled all values, so coercion only fails on a table/column
// mismatch, which indicates a caller bug.
func BuildTyped(raw *Raw, cols []Column) (*Typed, error) {
	if len(cols) != len(raw.Header) {
		return nil, fmt.Errorf("table: %d columns for %d header fields", len(cols), len(raw.Header))
	}
	t := &Typed{Columns: cols, Rows: make([][]Value, len(raw.Rows))}
	for ri, row := range raw.Rows {
		vals := make([]Value, len(cols))
		for ci, field := range row {
			v, err := coerce(field, cols[ci].Type)
			if err != nil {
				return nil, fmt.Errorf("table: row %d column %q: %w", ri+1, cols[ci].Name, err)
			}
			vals[ci] = v
		}
		t.Rows[ri] = vals
	}
	return t, nil
}

func coerce(field string, t Type) (Value, error) {
	if field == "" {
		return NullValue(t), nil
	}
	switch t {
	case TypeBoolean:
		if !boolToken(field) {
			return Value{}, fmt.Errorf("%q is not a boolean", field)
		}
		return BoolValue(strings.EqualFold(field, "true")), nil
	case TypeInteger:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not an integer", field)
		}
		return IntValue(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a float", field)
		}
		return FloatValue(f), nil
	case TypeDate:
		d, ok := ParseDate(field)
		if !ok {
			return Value{}, fmt.Errorf("%q is not a date", field)
		}
		return DateValue(d), nil
	default:
		return StringValue(field), nil
	}
}
