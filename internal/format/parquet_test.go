package format

import (
	"bytes"
	"testing"

	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquet_Decode(t *testing.T) {
	type record struct {
		ID    int64   `parquet:"id"`
		Name  string  `parquet:"name"`
		Score float64 `parquet:"score"`
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[record](&buf)
	_, err := w.Write([]record{
		{ID: 1, Name: "Alice", Score: 9.5},
		{ID: 2, Name: "Bob", Score: 4.25},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dec, ok := Lookup("parquet")
	require.True(t, ok)

	raw, err := dec.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, raw.Header)
	require.Len(t, raw.Rows, 2)
	assert.Equal(t, []string{"1", "Alice", "9.5"}, raw.Rows[0])
	assert.Equal(t, []string{"2", "Bob", "4.25"}, raw.Rows[1])
}

func TestParquet_GarbageInput(t *testing.T) {
	dec, _ := Lookup("parquet")
	_, err := dec.Decode([]byte("definitely not parquet"))
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}
