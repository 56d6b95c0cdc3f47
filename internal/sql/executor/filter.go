package executor

import (
	"math"
	"strconv"
	"strings"

	"github.com/ai-aide/tabq/internal/sql/parser"
	"github.com/ai-aide/tabq/internal/table"
)

func filterRows(where parser.Expr, tbl *table.Typed) ([][]table.Value, error) {
	if where == nil {
		// fresh slice header so later sorting cannot reorder the source
		out := make([][]table.Value, len(tbl.Rows))
		copy(out, tbl.Rows)
		return out, nil
	}
	// Resolve every referenced column before evaluating anything:
	// short-circuiting must not hide an unknown name in a skipped branch.
	if err := checkPredicateColumns(where, tbl.Columns); err != nil {
		return nil, err
	}
	var out [][]table.Value
	for _, row := range tbl.Rows {
		ok, err := evalBool(where, tbl.Columns, row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func checkPredicateColumns(e parser.Expr, cols []table.Column) error {
	switch e := e.(type) {
	case *parser.Logic:
		if err := checkPredicateColumns(e.Left, cols); err != nil {
			return err
		}
		return checkPredicateColumns(e.Right, cols)
	case *parser.Compare:
		if err := checkPredicateColumns(e.Left, cols); err != nil {
			return err
		}
		return checkPredicateColumns(e.Right, cols)
	case *parser.ColumnRef:
		if colIndex(cols, e.Name) < 0 {
			return execErrf("unknown column %q in WHERE", e.Name)
		}
		return nil
	default:
		return nil
	}
}

func evalBool(e parser.Expr, cols []table.Column, row []table.Value) (bool, error) {
	switch e := e.(type) {
	case *parser.Logic:
		left, err := evalBool(e.Left, cols, row)
		if err != nil {
			return false, err
		}
		if e.Op == parser.OpAnd && !left {
			return false, nil
		}
		if e.Op == parser.OpOr && left {
			return true, nil
		}
		return evalBool(e.Right, cols, row)
	case *parser.Compare:
		return evalCompare(e, cols, row)
	default:
		return false, execErrf("predicate must be a comparison, got %T", e)
	}
}

func evalCompare(e *parser.Compare, cols []table.Column, row []table.Value) (bool, error) {
	left, leftIsCol, err := operandValue(e.Left, cols, row)
	if err != nil {
		return false, err
	}
	right, rightIsCol, err := operandValue(e.Right, cols, row)
	if err != nil {
		return false, err
	}

	// Coerce toward the column side; literal-vs-literal coerces rightward.
	switch {
	case leftIsCol && !rightIsCol:
		right, err = coerceTo(right, left.Kind)
	case rightIsCol && !leftIsCol:
		left, err = coerceTo(left, right.Kind)
	case left.Kind != right.Kind:
		right, err = coerceTo(right, left.Kind)
	}
	if err != nil {
		return false, err
	}

	// Comparison with null never matches.
	if left.Null || right.Null {
		return false, nil
	}

	if left.Kind == table.TypeBoolean && e.Op != parser.OpEq && e.Op != parser.OpNe {
		return false, execErrf("booleans only support = and !=, got %s", e.Op)
	}

	c := table.Compare(left, right)
	switch e.Op {
	case parser.OpEq:
		return c == 0, nil
	case parser.OpNe:
		return c != 0, nil
	case parser.OpLt:
		return c < 0, nil
	case parser.OpLe:
		return c <= 0, nil
	case parser.OpGt:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func operandValue(e parser.Expr, cols []table.Column, row []table.Value) (table.Value, bool, error) {
	switch e := e.(type) {
	case *parser.ColumnRef:
		at := colIndex(cols, e.Name)
		if at < 0 {
			return table.Value{}, false, execErrf("unknown column %q in WHERE", e.Name)
		}
		return row[at], true, nil
	case *parser.Literal:
		return literalValue(e), false, nil
	default:
		return table.Value{}, false, execErrf("unsupported operand %T", e)
	}
}

func literalValue(l *parser.Literal) table.Value {
	switch l.Kind {
	case parser.LitInt:
		return table.IntValue(l.Int)
	case parser.LitFloat:
		return table.FloatValue(l.Float)
	case parser.LitBool:
		return table.BoolValue(l.Bool)
	default:
		return table.StringValue(l.Str)
	}
}

// coerceTo converts v to the target type when the conversion is lossless;
// anything else is an incompatible comparison.
func coerceTo(v table.Value, target table.Type) (table.Value, error) {
	if v.Kind == target {
		return v, nil
	}
	if v.Null {
		return table.NullValue(target), nil
	}
	switch {
	case v.Kind == table.TypeInteger && target == table.TypeFloat:
		return table.FloatValue(float64(v.Int)), nil
	case v.Kind == table.TypeFloat && target == table.TypeInteger:
		if v.Float == math.Trunc(v.Float) && v.Float >= math.MinInt64 && v.Float <= math.MaxInt64 {
			return table.IntValue(int64(v.Float)), nil
		}
	case v.Kind == table.TypeString && target == table.TypeDate:
		if d, ok := table.ParseDate(v.Str); ok {
			return table.DateValue(d), nil
		}
	case v.Kind == table.TypeString && target == table.TypeBoolean:
		if strings.EqualFold(v.Str, "true") || strings.EqualFold(v.Str, "false") {
			return table.BoolValue(strings.EqualFold(v.Str, "true")), nil
		}
	case v.Kind == table.TypeString && target == table.TypeInteger:
		if i, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return table.IntValue(i), nil
		}
	case v.Kind == table.TypeString && target == table.TypeFloat:
		if f, err := strconv.ParseFloat(v.Str, 64); err == nil {
			return table.FloatValue(f), nil
		}
	}
	return table.Value{}, execErrf("cannot compare %s value with %s", v.Kind, target)
}
