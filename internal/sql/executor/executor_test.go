package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-aide/tabq/internal/sql/parser"
	"github.com/ai-aide/tabq/internal/table"
)

// scoresTable is the schema from the reference scenario:
// id:Integer, name:String, score:Float with two nulls.
func scoresTable(t *testing.T) *table.Typed {
	t.Helper()
	raw := &table.Raw{
		Header: []string{"id", "name", "score"},
		Rows: [][]string{
			{"1", "Alice", "9.5"},
			{"2", "Bob", ""},
			{"3", "", "7.0"},
		},
	}
	typed, err := table.BuildTyped(raw, table.Infer(raw))
	require.NoError(t, err)
	return typed
}

func mustSelect(t *testing.T, sql string) *parser.SelectStmt {
	t.Helper()
	stmt, err := parser.Parse(sql)
	require.NoError(t, err)
	return stmt.(*parser.SelectStmt)
}

func TestExecute_FilterGreaterThan(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT name FROM r.csv WHERE score > 8"), scoresTable(t))
	require.NoError(t, err)

	require.Len(t, res.Columns, 1)
	assert.Equal(t, "name", res.Columns[0].Name)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Alice", res.Rows[0][0].Str)
}

func TestExecute_FilterIsIdempotent(t *testing.T) {
	tbl := scoresTable(t)
	sel := mustSelect(t, "SELECT * FROM r.csv WHERE score > 5")

	first, err := Execute(sel, tbl)
	require.NoError(t, err)
	second, err := Execute(sel, tbl)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestExecute_CountStarIncludesNulls(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT count(*) FROM r.csv"), scoresTable(t))
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "count", res.Columns[0].Name)
	assert.Equal(t, table.TypeInteger, res.Columns[0].Type)
	assert.Equal(t, int64(3), res.Rows[0][0].Int)
}

func TestExecute_CountColumnSkipsNulls(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT count(score) FROM r.csv"), scoresTable(t))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows[0][0].Int)
}

func TestExecute_AggregatesSkipNulls(t *testing.T) {
	res, err := Execute(
		mustSelect(t, "SELECT sum(score), avg(score), min(score), max(score) FROM r.csv"),
		scoresTable(t),
	)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.InDelta(t, 16.5, row[0].Float, 1e-9)
	assert.InDelta(t, 8.25, row[1].Float, 1e-9)
	assert.InDelta(t, 7.0, row[2].Float, 1e-9)
	assert.InDelta(t, 9.5, row[3].Float, 1e-9)
}

func TestExecute_SumIntStaysInteger(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT sum(id) FROM r.csv"), scoresTable(t))
	require.NoError(t, err)
	assert.Equal(t, table.TypeInteger, res.Columns[0].Type)
	assert.Equal(t, int64(6), res.Rows[0][0].Int)
}

func TestExecute_AggregateOverOnlyNullsIsNull(t *testing.T) {
	res, err := Execute(
		mustSelect(t, "SELECT sum(score), count(score) FROM r.csv WHERE id = 2"),
		scoresTable(t),
	)
	require.NoError(t, err)
	assert.True(t, res.Rows[0][0].Null)
	assert.Equal(t, int64(0), res.Rows[0][1].Int)
}

func TestExecute_SumOnStringColumnFails(t *testing.T) {
	_, err := Execute(mustSelect(t, "SELECT sum(name) FROM r.csv"), scoresTable(t))
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Msg, "name")
}

func TestExecute_GroupBy(t *testing.T) {
	raw := &table.Raw{
		Header: []string{"city", "pop"},
		Rows: [][]string{
			{"oslo", "10"},
			{"bergen", "5"},
			{"oslo", "20"},
			{"", "1"},
			{"", "2"},
		},
	}
	typed, err := table.BuildTyped(raw, table.Infer(raw))
	require.NoError(t, err)

	res, err := Execute(mustSelect(t, "SELECT city, sum(pop) AS total FROM r.csv GROUP BY city"), typed)
	require.NoError(t, err)

	// first-seen partition order; null city groups with null
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "oslo", res.Rows[0][0].Str)
	assert.Equal(t, int64(30), res.Rows[0][1].Int)
	assert.Equal(t, "bergen", res.Rows[1][0].Str)
	assert.Equal(t, int64(5), res.Rows[1][1].Int)
	assert.True(t, res.Rows[2][0].Null)
	assert.Equal(t, int64(3), res.Rows[2][1].Int)
}

func TestExecute_GroupKeysWithSeparatorBytes(t *testing.T) {
	// ("a\x1fb", "c") and ("a", "b\x1fc") must land in distinct partitions
	raw := &table.Raw{
		Header: []string{"a", "b"},
		Rows: [][]string{
			{"a\x1fb", "c"},
			{"a", "b\x1fc"},
		},
	}
	typed, err := table.BuildTyped(raw, table.Infer(raw))
	require.NoError(t, err)

	res, err := Execute(mustSelect(t, "SELECT a, b, count(*) FROM r.csv GROUP BY a, b"), typed)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(1), res.Rows[0][2].Int)
	assert.Equal(t, int64(1), res.Rows[1][2].Int)
}

func TestExecute_OrderByNullsFirstAsc(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT id, score FROM r.csv ORDER BY score"), scoresTable(t))
	require.NoError(t, err)

	assert.True(t, res.Rows[0][1].Null)
	assert.InDelta(t, 7.0, res.Rows[1][1].Float, 1e-9)
	assert.InDelta(t, 9.5, res.Rows[2][1].Float, 1e-9)
}

func TestExecute_OrderByNullsLastDesc(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT id, score FROM r.csv ORDER BY score DESC"), scoresTable(t))
	require.NoError(t, err)

	assert.InDelta(t, 9.5, res.Rows[0][1].Float, 1e-9)
	assert.True(t, res.Rows[2][1].Null)
}

func TestExecute_OrderIsStable(t *testing.T) {
	raw := &table.Raw{
		Header: []string{"k", "v"},
		Rows:   [][]string{{"1", "a"}, {"1", "b"}, {"1", "c"}},
	}
	typed, err := table.BuildTyped(raw, table.Infer(raw))
	require.NoError(t, err)

	res, err := Execute(mustSelect(t, "SELECT k, v FROM r.csv ORDER BY k"), typed)
	require.NoError(t, err)
	assert.Equal(t, "a", res.Rows[0][1].Str)
	assert.Equal(t, "b", res.Rows[1][1].Str)
	assert.Equal(t, "c", res.Rows[2][1].Str)
}

func TestExecute_OrderBySourceNameOfAliasedColumn(t *testing.T) {
	res, err := Execute(
		mustSelect(t, "SELECT id, score AS s FROM r.csv ORDER BY score DESC"),
		scoresTable(t),
	)
	require.NoError(t, err)

	assert.Equal(t, "s", res.Columns[1].Name)
	assert.InDelta(t, 9.5, res.Rows[0][1].Float, 1e-9)
	assert.True(t, res.Rows[2][1].Null)
}

func TestExecute_OrderByUnprojectedColumn(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT name FROM r.csv ORDER BY id DESC"), scoresTable(t))
	require.NoError(t, err)

	require.Len(t, res.Columns, 1)
	assert.True(t, res.Rows[0][0].Null)
	assert.Equal(t, "Bob", res.Rows[1][0].Str)
	assert.Equal(t, "Alice", res.Rows[2][0].Str)
}

func TestExecute_OrderByAliasAfterGrouping(t *testing.T) {
	res, err := Execute(
		mustSelect(t, "SELECT name, count(*) AS n FROM r.csv GROUP BY name ORDER BY n DESC"),
		scoresTable(t),
	)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, int64(1), res.Rows[0][1].Int)
}

func TestExecute_LimitAndOffset(t *testing.T) {
	tbl := scoresTable(t)

	res, err := Execute(mustSelect(t, "SELECT * FROM r.csv LIMIT 2"), tbl)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	res, err = Execute(mustSelect(t, "SELECT * FROM r.csv LIMIT 100"), tbl)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3, "limit above result size is not an error")

	res, err = Execute(mustSelect(t, "SELECT * FROM r.csv LIMIT 2 OFFSET 2"), tbl)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(3), res.Rows[0][0].Int)

	res, err = Execute(mustSelect(t, "SELECT * FROM r.csv OFFSET 99"), tbl)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestExecute_UnknownColumns(t *testing.T) {
	tbl := scoresTable(t)
	var ee *ExecError

	_, err := Execute(mustSelect(t, "SELECT nope FROM r.csv"), tbl)
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Msg, `"nope"`)

	_, err = Execute(mustSelect(t, "SELECT * FROM r.csv WHERE nope = 1"), tbl)
	require.ErrorAs(t, err, &ee)

	// short-circuiting must not hide the unknown name in the right branch
	_, err = Execute(mustSelect(t, "SELECT * FROM r.csv WHERE id >= 1 OR nope = 1"), tbl)
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Msg, `"nope"`)

	_, err = Execute(mustSelect(t, "SELECT id FROM r.csv ORDER BY nope"), tbl)
	require.ErrorAs(t, err, &ee)

	_, err = Execute(mustSelect(t, "SELECT nope, count(*) FROM r.csv GROUP BY nope"), tbl)
	require.ErrorAs(t, err, &ee)
}

func TestExecute_IncompatibleComparison(t *testing.T) {
	_, err := Execute(mustSelect(t, "SELECT * FROM r.csv WHERE id = 'abc'"), scoresTable(t))
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
}

func TestExecute_LosslessLiteralCoercion(t *testing.T) {
	// float literal 1.0 against the Integer id column
	res, err := Execute(mustSelect(t, "SELECT id FROM r.csv WHERE id = 1.0"), scoresTable(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	// int literal against the Float score column
	res, err = Execute(mustSelect(t, "SELECT id FROM r.csv WHERE score > 8"), scoresTable(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	// string literal '1' against the Integer id column parses losslessly
	res, err = Execute(mustSelect(t, "SELECT id FROM r.csv WHERE id = '1'"), scoresTable(t))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestExecute_NullComparisonNeverMatches(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT id FROM r.csv WHERE score < 100"), scoresTable(t))
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2, "row with null score must not match")
}

func TestExecute_DateFiltering(t *testing.T) {
	raw := &table.Raw{
		Header: []string{"day", "n"},
		Rows:   [][]string{{"2024-01-01", "1"}, {"2024-06-01", "2"}, {"2023-01-01", "3"}},
	}
	typed, err := table.BuildTyped(raw, table.Infer(raw))
	require.NoError(t, err)

	res, err := Execute(mustSelect(t, "SELECT n FROM r.csv WHERE day > '2023-12-31'"), typed)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestExecute_SourceTableNotMutated(t *testing.T) {
	tbl := scoresTable(t)
	before := make([][]table.Value, len(tbl.Rows))
	copy(before, tbl.Rows)

	_, err := Execute(mustSelect(t, "SELECT * FROM r.csv ORDER BY score DESC"), tbl)
	require.NoError(t, err)
	assert.Equal(t, before, tbl.Rows)
}

func TestResult_ToCSV(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT id, score FROM r.csv"), scoresTable(t))
	require.NoError(t, err)

	out, err := res.ToCSV()
	require.NoError(t, err)
	assert.Equal(t, "id,score\n1,9.5\n2,\n3,7\n", out)
}

func TestResult_ToJSON(t *testing.T) {
	res, err := Execute(mustSelect(t, "SELECT name, score FROM r.csv WHERE id = 2"), scoresTable(t))
	require.NoError(t, err)

	out, err := res.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Bob","score":null}]`, out)
}
