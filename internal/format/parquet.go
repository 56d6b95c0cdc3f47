package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/segmentio/parquet-go"

	"github.com/ai-aide/tabq/internal/table"
)

func init() {
	register("parquet", parquetDecoder{})
}

type parquetDecoder struct{}

// Decode reads a flat parquet file. Leaf values are rendered to field
// strings and re-typed by inference, same as the other formats.
func (parquetDecoder) Decode(data []byte) (*table.Raw, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DecodeError{Format: "parquet", Msg: err.Error()}
	}

	fields := f.Schema().Fields()
	raw := &table.Raw{Header: make([]string, len(fields))}
	for i, fld := range fields {
		raw.Header[i] = fld.Name()
	}

	buf := make([]parquet.Row, 64)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, pr := range buf[:n] {
				rec := make([]string, len(raw.Header))
				for _, v := range pr {
					ci := v.Column()
					if ci < 0 || ci >= len(rec) {
						_ = rows.Close()
						return nil, &DecodeError{
							Format: "parquet",
							Row:    len(raw.Rows) + 1,
							Msg:    fmt.Sprintf("value for column %d outside schema", ci),
						}
					}
					rec[ci] = renderParquetValue(v)
				}
				raw.Rows = append(raw.Rows, rec)
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, &DecodeError{Format: "parquet", Row: len(raw.Rows) + 1, Msg: err.Error()}
			}
		}
		if err := rows.Close(); err != nil {
			return nil, &DecodeError{Format: "parquet", Msg: err.Error()}
		}
	}
	return raw, nil
}

func renderParquetValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return v.String()
	}
}
