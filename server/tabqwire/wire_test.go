package tabqwire

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-aide/tabq"
	"github.com/ai-aide/tabq/internal/table"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := QueryRequest{ID: 7, SQL: "SELECT * FROM x.csv", Format: "csv"}
	require.NoError(t, WriteFrame(&buf, req))

	var got QueryRequest
	require.NoError(t, ReadFrame(&buf, &got))
	assert.Equal(t, req, got)
}

func TestFrame_TooLargeRejected(t *testing.T) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)

	var got QueryRequest
	err := ReadFrame(bytes.NewReader(hdr[:]), &got)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrame_ZeroLengthRejected(t *testing.T) {
	var hdr [4]byte
	var got QueryRequest
	err := ReadFrame(bytes.NewReader(hdr[:]), &got)
	require.ErrorIs(t, err, ErrEmptyFrame)
}

func TestFrame_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, QueryRequest{ID: 1, SQL: "x"}))
	short := buf.Bytes()[:buf.Len()-2]

	var got QueryRequest
	err := ReadFrame(bytes.NewReader(short), &got)
	require.Error(t, err)
}

func TestNewQueryResponse_NullsStayNil(t *testing.T) {
	res := &tabq.Result{
		Columns: []tabq.Column{
			{Name: "id", Type: table.TypeInteger},
			{Name: "score", Type: table.TypeFloat},
		},
		Rows: [][]tabq.Value{
			{table.IntValue(1), table.FloatValue(9.5)},
			{table.IntValue(2), table.NullValue(table.TypeFloat)},
		},
	}
	resp := NewQueryResponse(42, res)

	assert.Equal(t, uint64(42), resp.ID)
	assert.Equal(t, []string{"id", "score"}, resp.Columns)
	assert.Equal(t, []string{"Integer", "Float"}, resp.Types)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, int64(1), resp.Rows[0][0])
	assert.Nil(t, resp.Rows[1][1])
}
