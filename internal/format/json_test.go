package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Decode(t *testing.T) {
	data := []byte(`[
		{"sepalLength": 5.1, "species": "setosa", "tagged": true},
		{"sepalLength": 7.0, "species": "versicolor", "tagged": false}
	]`)
	dec, ok := Lookup("json")
	require.True(t, ok)

	raw, err := dec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"sepalLength", "species", "tagged"}, raw.Header)
	require.Len(t, raw.Rows, 2)
	assert.Equal(t, []string{"5.1", "setosa", "true"}, raw.Rows[0])
	assert.Equal(t, []string{"7.0", "versicolor", "false"}, raw.Rows[1])
}

func TestJSON_MissingKeyIsNull(t *testing.T) {
	data := []byte(`[{"a": 1, "b": 2}, {"a": 3}]`)
	dec, _ := Lookup("json")

	raw, err := dec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", ""}, raw.Rows[1])
}

func TestJSON_NullValue(t *testing.T) {
	data := []byte(`[{"a": null, "b": "x"}]`)
	dec, _ := Lookup("json")

	raw, err := dec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "x"}, raw.Rows[0])
}

func TestJSON_UnknownKeyRejected(t *testing.T) {
	data := []byte(`[{"a": 1}, {"a": 2, "b": 3}]`)
	dec, _ := Lookup("json")

	_, err := dec.Decode(data)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Row)
}

func TestJSON_NestedValueRejected(t *testing.T) {
	data := []byte(`[{"a": {"nested": 1}}]`)
	dec, _ := Lookup("json")

	_, err := dec.Decode(data)
	require.Error(t, err)
}

func TestJSON_TopLevelMustBeArray(t *testing.T) {
	dec, _ := Lookup("json")
	_, err := dec.Decode([]byte(`{"a": 1}`))
	require.Error(t, err)
}

func TestJSON_NumberLexicalFormKept(t *testing.T) {
	// 7.0 must stay "7.0" so inference sees a float, not an int
	data := []byte(`[{"n": 7.0}]`)
	dec, _ := Lookup("json")

	raw, err := dec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "7.0", raw.Rows[0][0])
}
