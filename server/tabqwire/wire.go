package tabqwire

import "github.com/ai-aide/tabq"

// QueryRequest is a single statement to run against a resource.
type QueryRequest struct {
	ID     uint64 `json:"id"`
	SQL    string `json:"sql"`
	Format string `json:"format,omitempty"`
}

// QueryResponse answers a request ID with a rendered result table or an
// error string.
type QueryResponse struct {
	ID      uint64   `json:"id"`
	Columns []string `json:"columns,omitempty"`
	Types   []string `json:"types,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewQueryResponse flattens a result into the wire shape; nulls stay nil.
func NewQueryResponse(id uint64, res *tabq.Result) QueryResponse {
	resp := QueryResponse{ID: id}
	for _, c := range res.Columns {
		resp.Columns = append(resp.Columns, c.Name)
		resp.Types = append(resp.Types, c.Type.String())
	}
	for _, row := range res.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v.Interface()
		}
		resp.Rows = append(resp.Rows, cells)
	}
	return resp
}
