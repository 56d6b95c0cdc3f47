package parser

import "fmt"

// validate enforces the structural rules that do not need the schema:
// GROUP BY requires every non-aggregated projection to be one of the
// grouping columns, and aggregates cannot mix with plain columns without
// GROUP BY. Schema-dependent checks (unknown columns) wait for execution.
func validate(sel *SelectStmt) error {
	if len(sel.GroupBy) > 0 {
		if sel.Star {
			return &ParseError{Msg: "SELECT * cannot be combined with GROUP BY"}
		}
		grouped := make(map[string]struct{}, len(sel.GroupBy))
		for _, c := range sel.GroupBy {
			grouped[c] = struct{}{}
		}
		for _, item := range sel.Items {
			ref, ok := item.Expr.(*ColumnRef)
			if !ok {
				continue // aggregates are always valid under GROUP BY
			}
			if _, ok := grouped[ref.Name]; !ok {
				return &ParseError{
					Msg: fmt.Sprintf("column %q must appear in GROUP BY or be aggregated", ref.Name),
				}
			}
		}
		return nil
	}

	var aggs, plain int
	for _, item := range sel.Items {
		if _, ok := item.Expr.(*Aggregate); ok {
			aggs++
		} else {
			plain++
		}
	}
	if aggs > 0 && plain > 0 {
		return &ParseError{Msg: "cannot mix aggregated and plain columns without GROUP BY"}
	}
	return nil
}
