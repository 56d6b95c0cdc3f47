package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ai-aide/tabq/internal/table"
)

func init() {
	register("json", jsonDecoder{})
}

type jsonDecoder struct{}

// Decode reads a top-level JSON array of flat objects. The header is the
// first object's key order; later objects may omit keys (null fields) but
// may not introduce new ones. Nested objects/arrays are not tabular and
// fail decoding.
func (jsonDecoder) Decode(data []byte) (*table.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // keep the lexical form, inference decides int vs float

	tok, err := dec.Token()
	if err != nil {
		return nil, &DecodeError{Format: "json", Msg: err.Error()}
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, &DecodeError{Format: "json", Msg: "top-level value is not an array"}
	}

	raw := &table.Raw{}
	index := map[string]int{}
	for i := 1; dec.More(); i++ {
		keys, vals, err := readFlatObject(dec)
		if err != nil {
			return nil, &DecodeError{Format: "json", Row: i, Msg: err.Error()}
		}
		if i == 1 {
			raw.Header = keys
			for pos, k := range keys {
				index[k] = pos
			}
		}
		row := make([]string, len(raw.Header))
		for pos, k := range keys {
			at, known := index[k]
			if !known {
				return nil, &DecodeError{Format: "json", Row: i, Msg: fmt.Sprintf("unknown key %q", k)}
			}
			row[at] = vals[pos]
		}
		raw.Rows = append(raw.Rows, row)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, &DecodeError{Format: "json", Msg: err.Error()}
	}
	return raw, nil
}

// readFlatObject consumes one object from the token stream, preserving key
// order and rendering scalar values as field strings (null as "").
func readFlatObject(dec *json.Decoder) (keys, vals []string, err error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("array element is not an object")
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := kt.(string)

		vt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		var field string
		switch v := vt.(type) {
		case nil:
			field = ""
		case string:
			field = v
		case bool:
			field = strconv.FormatBool(v)
		case json.Number:
			field = v.String()
		case json.Delim:
			return nil, nil, fmt.Errorf("key %q has a nested value", key)
		default:
			return nil, nil, fmt.Errorf("key %q has unsupported value %T", key, vt)
		}
		keys = append(keys, key)
		vals = append(vals, field)
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, nil, err
	}
	return keys, vals, nil
}
