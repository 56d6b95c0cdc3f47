// Package executor evaluates a parsed SELECT against a typed table:
// filter, then group/aggregate or order-and-project, then offset/limit.
package executor

import (
	"fmt"
	"sort"

	"github.com/ai-aide/tabq/internal/sql/parser"
	"github.com/ai-aide/tabq/internal/table"
)

// ExecError is a statement that parsed but cannot be evaluated against
// this table: unknown column, incompatible comparison, bad aggregation.
type ExecError struct {
	Msg string
}

func (e *ExecError) Error() string { return "exec: " + e.Msg }

func execErrf(format string, args ...any) *ExecError {
	return &ExecError{Msg: fmt.Sprintf(format, args...)}
}

// Execute runs the pipeline and returns a fresh Result; the input table is
// never mutated.
func Execute(sel *parser.SelectStmt, tbl *table.Typed) (*Result, error) {
	rows, err := filterRows(sel.Where, tbl)
	if err != nil {
		return nil, err
	}

	var res *Result
	if len(sel.GroupBy) > 0 || hasAggregates(sel) {
		// Grouping collapses the source rows, so ordering can only refer
		// to the aggregated output columns (aliases included).
		res, err = aggregateRows(sel, tbl.Columns, rows)
		if err != nil {
			return nil, err
		}
		if err := sortRows(res.Rows, res.Columns, sel.OrderBy); err != nil {
			return nil, err
		}
	} else {
		// Ordering precedes projection: ORDER BY names source columns, so
		// a column projected under an alias still sorts by its own name.
		if err := sortRows(rows, tbl.Columns, sel.OrderBy); err != nil {
			return nil, err
		}
		res, err = projectRows(sel, tbl.Columns, rows)
		if err != nil {
			return nil, err
		}
	}

	if sel.HasOffset {
		if sel.Offset >= int64(len(res.Rows)) {
			res.Rows = nil
		} else {
			res.Rows = res.Rows[sel.Offset:]
		}
	}
	if sel.HasLimit && sel.Limit < int64(len(res.Rows)) {
		res.Rows = res.Rows[:sel.Limit]
	}
	return res, nil
}

func hasAggregates(sel *parser.SelectStmt) bool {
	for _, item := range sel.Items {
		if _, ok := item.Expr.(*parser.Aggregate); ok {
			return true
		}
	}
	return false
}

func colIndex(cols []table.Column, name string) int {
	for i := range cols {
		if cols[i].Name == name {
			return i
		}
	}
	return -1
}

// projectRows handles the non-aggregated path: * or a plain column list.
func projectRows(sel *parser.SelectStmt, cols []table.Column, rows [][]table.Value) (*Result, error) {
	if sel.Star {
		out := &Result{Columns: make([]table.Column, len(cols)), Rows: rows}
		copy(out.Columns, cols)
		return out, nil
	}

	idx := make([]int, len(sel.Items))
	res := &Result{Columns: make([]table.Column, len(sel.Items))}
	for i, item := range sel.Items {
		ref := item.Expr.(*parser.ColumnRef) // validation left only plain refs here
		at := colIndex(cols, ref.Name)
		if at < 0 {
			return nil, execErrf("unknown column %q in projection", ref.Name)
		}
		idx[i] = at
		name := ref.Name
		if item.Alias != "" {
			name = item.Alias
		}
		res.Columns[i] = table.Column{Name: name, Type: cols[at].Type}
	}

	res.Rows = make([][]table.Value, len(rows))
	for ri, row := range rows {
		projected := make([]table.Value, len(idx))
		for i, at := range idx {
			projected[i] = row[at]
		}
		res.Rows[ri] = projected
	}
	return res, nil
}

// sortRows stable-sorts rows in place by the ORDER BY keys, resolved
// against cols. Nulls order first ascending, last descending; ties keep
// their prior order.
func sortRows(rows [][]table.Value, cols []table.Column, keys []parser.OrderItem) error {
	if len(keys) == 0 {
		return nil
	}
	type sortKey struct {
		at   int
		desc bool
	}
	sk := make([]sortKey, len(keys))
	for i, k := range keys {
		at := colIndex(cols, k.Column)
		if at < 0 {
			return execErrf("unknown column %q in ORDER BY", k.Column)
		}
		sk[i] = sortKey{at: at, desc: k.Desc}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range sk {
			c := table.Compare(rows[i][k.at], rows[j][k.at])
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return nil
}
