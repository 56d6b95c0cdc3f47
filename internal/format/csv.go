package format

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ai-aide/tabq/internal/table"
)

func init() {
	register("csv", csvDecoder{})
}

type csvDecoder struct{}

// Decode reads standard CSV: the first record is the header, every later
// record is a data row. Duplicate header names and rows whose field count
// differs from the header are hard errors; blank lines are skipped by the
// reader.
func (csvDecoder) Decode(data []byte) (*table.Raw, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // row width is checked here, with a row index

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DecodeError{Format: "csv", Msg: "empty input"}
		}
		return nil, &DecodeError{Format: "csv", Msg: err.Error()}
	}

	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, &DecodeError{Format: "csv", Msg: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = struct{}{}
	}

	raw := &table.Raw{Header: header}
	for i := 1; ; i++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: "csv", Row: i, Msg: err.Error()}
		}
		if len(rec) != len(header) {
			return nil, &DecodeError{
				Format: "csv",
				Row:    i,
				Msg:    fmt.Sprintf("%d fields, header has %d", len(rec), len(header)),
			}
		}
		raw.Rows = append(raw.Rows, rec)
	}
	return raw, nil
}
