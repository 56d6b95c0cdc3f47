package table

import (
	"strconv"
	"strings"
	"time"
)

// Type is the inferred semantic type of a column.
type Type uint8

const (
	TypeString Type = iota
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDate
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInteger:
		return "Integer"
	case TypeFloat:
		return "Float"
	case TypeBoolean:
		return "Boolean"
	case TypeDate:
		return "Date"
	default:
		return "Unknown"
	}
}

// Column describes one column of a typed table.
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Value is a single typed cell. Kind is the column type; Null marks an
// empty/missing source field. Exactly one payload field is meaningful.
type Value struct {
	Kind  Type
	Null  bool
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Str   string
}

func NullValue(t Type) Value      { return Value{Kind: t, Null: true} }
func IntValue(v int64) Value      { return Value{Kind: TypeInteger, Int: v} }
func FloatValue(v float64) Value  { return Value{Kind: TypeFloat, Float: v} }
func BoolValue(v bool) Value      { return Value{Kind: TypeBoolean, Bool: v} }
func DateValue(v time.Time) Value { return Value{Kind: TypeDate, Time: v} }
func StringValue(v string) Value  { return Value{Kind: TypeString, Str: v} }

// Interface returns the native Go representation of the value, nil for null.
func (v Value) Interface() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case TypeInteger:
		return v.Int
	case TypeFloat:
		return v.Float
	case TypeBoolean:
		return v.Bool
	case TypeDate:
		return v.Time.Format(dateOutputFormat)
	default:
		return v.Str
	}
}

func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case TypeInteger:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeDate:
		return v.Time.Format(dateOutputFormat)
	default:
		return v.Str
	}
}

// Compare orders two values of the same kind. Nulls order before any
// non-null value, and equal to each other.
func Compare(a, b Value) int {
	if a.Null || b.Null {
		switch {
		case a.Null && b.Null:
			return 0
		case a.Null:
			return -1
		default:
			return 1
		}
	}
	switch a.Kind {
	case TypeInteger:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		}
		return 0
	case TypeFloat:
		switch {
		case a.Float < b.Float:
			return -1
		case a.Float > b.Float:
			return 1
		}
		return 0
	case TypeBoolean:
		switch {
		case !a.Bool && b.Bool:
			return -1
		case a.Bool && !b.Bool:
			return 1
		}
		return 0
	case TypeDate:
		switch {
		case a.Time.Before(b.Time):
			return -1
		case a.Time.After(b.Time):
			return 1
		}
		return 0
	default:
		return strings.Compare(a.Str, b.Str)
	}
}
