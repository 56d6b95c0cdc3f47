package executor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/ai-aide/tabq/internal/table"
)

// Result is the terminal artifact of a query: ordered typed columns plus
// rows of typed values.
type Result struct {
	Columns []table.Column
	Rows    [][]table.Value
}

// ToCSV renders the result as CSV, header first. Nulls become empty fields.
func (r *Result) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("result: write csv: %w", err)
	}

	rec := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for i, v := range row {
			rec[i] = v.String()
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("result: write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("result: write csv: %w", err)
	}
	return buf.String(), nil
}

// ToJSON renders the result as a JSON array of row objects. Nulls stay
// null rather than turning into zero values.
func (r *Result) ToJSON() (string, error) {
	rows := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		obj := make(map[string]any, len(r.Columns))
		for j, c := range r.Columns {
			obj[c.Name] = row[j].Interface()
		}
		rows[i] = obj
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("result: write json: %w", err)
	}
	return string(b), nil
}
