package executor

import (
	"strconv"
	"strings"

	"github.com/ai-aide/tabq/internal/sql/parser"
	"github.com/ai-aide/tabq/internal/table"
)

// aggregateRows handles the grouped path. Without GROUP BY all surviving
// rows form one implicit group. Partitions keep first-seen order.
func aggregateRows(sel *parser.SelectStmt, cols []table.Column, rows [][]table.Value) (*Result, error) {
	groupIdx := make([]int, len(sel.GroupBy))
	for i, name := range sel.GroupBy {
		at := colIndex(cols, name)
		if at < 0 {
			return nil, execErrf("unknown column %q in GROUP BY", name)
		}
		groupIdx[i] = at
	}

	var groups [][][]table.Value
	if len(groupIdx) == 0 {
		groups = [][][]table.Value{rows}
	} else {
		seen := map[string]int{}
		for _, row := range rows {
			key := groupKey(row, groupIdx)
			at, ok := seen[key]
			if !ok {
				at = len(groups)
				seen[key] = at
				groups = append(groups, nil)
			}
			groups[at] = append(groups[at], row)
		}
	}

	res := &Result{Columns: make([]table.Column, len(sel.Items))}
	for i, item := range sel.Items {
		col, err := outputColumn(item, cols)
		if err != nil {
			return nil, err
		}
		res.Columns[i] = col
	}

	res.Rows = make([][]table.Value, 0, len(groups))
	for _, group := range groups {
		out := make([]table.Value, len(sel.Items))
		for i, item := range sel.Items {
			v, err := evalAggItem(item.Expr, cols, group)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// groupKey encodes the grouping values so equal typed values (nulls
// included) land in the same partition. Each value is length-prefixed:
// plain joining would let values containing the joiner collide across
// adjacent columns.
func groupKey(row []table.Value, idx []int) string {
	var b strings.Builder
	for _, at := range idx {
		v := row[at]
		if v.Null {
			b.WriteString("n,")
			continue
		}
		s := v.String()
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

func outputColumn(item parser.SelectItem, cols []table.Column) (table.Column, error) {
	switch e := item.Expr.(type) {
	case *parser.ColumnRef:
		at := colIndex(cols, e.Name)
		if at < 0 {
			return table.Column{}, execErrf("unknown column %q in projection", e.Name)
		}
		name := e.Name
		if item.Alias != "" {
			name = item.Alias
		}
		return table.Column{Name: name, Type: cols[at].Type}, nil
	case *parser.Aggregate:
		name := item.Alias
		if name == "" {
			if e.Star {
				name = e.Fn.String()
			} else {
				name = e.Fn.String() + "(" + e.Column + ")"
			}
		}
		t, err := aggregateType(e, cols)
		if err != nil {
			return table.Column{}, err
		}
		return table.Column{Name: name, Type: t}, nil
	default:
		return table.Column{}, execErrf("unsupported projection expression %T", item.Expr)
	}
}

func aggregateType(agg *parser.Aggregate, cols []table.Column) (table.Type, error) {
	if agg.Star {
		return table.TypeInteger, nil
	}
	at := colIndex(cols, agg.Column)
	if at < 0 {
		return 0, execErrf("unknown column %q in %s()", agg.Column, strings.ToUpper(agg.Fn.String()))
	}
	switch agg.Fn {
	case parser.AggCount:
		return table.TypeInteger, nil
	case parser.AggAvg:
		if t := cols[at].Type; t != table.TypeInteger && t != table.TypeFloat {
			return 0, execErrf("AVG over non-numeric column %q (%s)", agg.Column, t)
		}
		return table.TypeFloat, nil
	default:
		if t := cols[at].Type; t != table.TypeInteger && t != table.TypeFloat {
			return 0, execErrf("%s over non-numeric column %q (%s)",
				strings.ToUpper(agg.Fn.String()), agg.Column, t)
		}
		return cols[at].Type, nil
	}
}

func evalAggItem(e parser.Expr, cols []table.Column, group [][]table.Value) (table.Value, error) {
	switch e := e.(type) {
	case *parser.ColumnRef:
		at := colIndex(cols, e.Name)
		if at < 0 {
			return table.Value{}, execErrf("unknown column %q in projection", e.Name)
		}
		if len(group) == 0 {
			return table.NullValue(cols[at].Type), nil
		}
		return group[0][at], nil // grouping column: constant within the partition
	case *parser.Aggregate:
		return evalAggregate(e, cols, group)
	default:
		return table.Value{}, execErrf("unsupported projection expression %T", e)
	}
}

func evalAggregate(agg *parser.Aggregate, cols []table.Column, group [][]table.Value) (table.Value, error) {
	if agg.Star {
		// COUNT(*) counts rows, nulls included
		return table.IntValue(int64(len(group))), nil
	}
	at := colIndex(cols, agg.Column)
	if at < 0 {
		return table.Value{}, execErrf("unknown column %q in %s()",
			agg.Column, strings.ToUpper(agg.Fn.String()))
	}
	colType := cols[at].Type

	if agg.Fn == parser.AggCount {
		var n int64
		for _, row := range group {
			if !row[at].Null {
				n++
			}
		}
		return table.IntValue(n), nil
	}

	if colType != table.TypeInteger && colType != table.TypeFloat {
		return table.Value{}, execErrf("%s over non-numeric column %q (%s)",
			strings.ToUpper(agg.Fn.String()), agg.Column, colType)
	}

	var (
		n        int64
		sumInt   int64
		sumFloat float64
		min, max table.Value
	)
	for _, row := range group {
		v := row[at]
		if v.Null {
			continue
		}
		if n == 0 {
			min, max = v, v
		} else {
			if table.Compare(v, min) < 0 {
				min = v
			}
			if table.Compare(v, max) > 0 {
				max = v
			}
		}
		if colType == table.TypeInteger {
			sumInt += v.Int
			sumFloat += float64(v.Int)
		} else {
			sumFloat += v.Float
		}
		n++
	}

	if n == 0 {
		// aggregate over only nulls yields null
		t := colType
		if agg.Fn == parser.AggAvg {
			t = table.TypeFloat
		}
		return table.NullValue(t), nil
	}

	switch agg.Fn {
	case parser.AggSum:
		if colType == table.TypeInteger {
			return table.IntValue(sumInt), nil
		}
		return table.FloatValue(sumFloat), nil
	case parser.AggAvg:
		return table.FloatValue(sumFloat / float64(n)), nil
	case parser.AggMin:
		return min, nil
	default:
		return max, nil
	}
}
