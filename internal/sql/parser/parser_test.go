package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ShowColumns(t *testing.T) {
	stmt, err := Parse("SHOW COLUMNS FROM https://example.com/data.csv?ref=x&y=1")
	require.NoError(t, err)

	s, ok := stmt.(*ShowColumnsStmt)
	require.True(t, ok, "want *ShowColumnsStmt, got %T", stmt)
	assert.Equal(t, "https://example.com/data.csv?ref=x&y=1", s.Locator)
}

func TestParse_ShowColumns_MissingFrom(t *testing.T) {
	_, err := Parse("SHOW COLUMNS")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParse_SelectStar(t *testing.T) {
	stmt, err := Parse("SELECT * FROM ./testdata/rows.csv")
	require.NoError(t, err)

	s, ok := stmt.(*SelectStmt)
	require.True(t, ok, "want *SelectStmt, got %T", stmt)
	assert.True(t, s.Star)
	assert.Equal(t, "./testdata/rows.csv", s.Locator)
	assert.Nil(t, s.Where)
}

func TestParse_SelectFullClauseSet(t *testing.T) {
	sql := "SELECT a, b AS bee FROM file.csv WHERE a > 1 AND b != 'x' " +
		"GROUP BY a, b ORDER BY a DESC, b LIMIT 10 OFFSET 2"
	stmt, err := Parse(sql)
	require.NoError(t, err)

	s := stmt.(*SelectStmt)
	require.Len(t, s.Items, 2)
	assert.Equal(t, &ColumnRef{Name: "a"}, s.Items[0].Expr)
	assert.Equal(t, "bee", s.Items[1].Alias)
	assert.Equal(t, []string{"a", "b"}, s.GroupBy)
	require.Len(t, s.OrderBy, 2)
	assert.True(t, s.OrderBy[0].Desc)
	assert.False(t, s.OrderBy[1].Desc)
	require.True(t, s.HasLimit)
	assert.Equal(t, int64(10), s.Limit)
	require.True(t, s.HasOffset)
	assert.Equal(t, int64(2), s.Offset)
}

func TestParse_OperatorsWithoutSpaces(t *testing.T) {
	stmt, err := Parse("SELECT a FROM f.csv WHERE a>29.0 AND b<=5")
	require.NoError(t, err)

	s := stmt.(*SelectStmt)
	and, ok := s.Where.(*Logic)
	require.True(t, ok)
	assert.Equal(t, OpAnd, and.Op)

	left := and.Left.(*Compare)
	assert.Equal(t, OpGt, left.Op)
	lit := left.Right.(*Literal)
	assert.Equal(t, LitFloat, lit.Kind)
	assert.Equal(t, 29.0, lit.Float)
}

func TestParse_AndBindsTighterThanOr(t *testing.T) {
	stmt, err := Parse("SELECT a FROM f.csv WHERE a = 1 OR b = 2 AND c = 3")
	require.NoError(t, err)

	or, ok := stmt.(*SelectStmt).Where.(*Logic)
	require.True(t, ok)
	assert.Equal(t, OpOr, or.Op)

	and, ok := or.Right.(*Logic)
	require.True(t, ok)
	assert.Equal(t, OpAnd, and.Op)
}

func TestParse_ParenthesizedPredicate(t *testing.T) {
	stmt, err := Parse("SELECT a FROM f.csv WHERE (a = 1 OR b = 2) AND c = 3")
	require.NoError(t, err)

	and, ok := stmt.(*SelectStmt).Where.(*Logic)
	require.True(t, ok)
	assert.Equal(t, OpAnd, and.Op)

	or, ok := and.Left.(*Logic)
	require.True(t, ok)
	assert.Equal(t, OpOr, or.Op)
}

func TestParse_Aggregates(t *testing.T) {
	stmt, err := Parse("SELECT y, count(*), sum(x) AS total FROM f.csv GROUP BY y")
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	require.Len(t, s.Items, 3)

	cnt := s.Items[1].Expr.(*Aggregate)
	assert.Equal(t, AggCount, cnt.Fn)
	assert.True(t, cnt.Star)

	sum := s.Items[2].Expr.(*Aggregate)
	assert.Equal(t, AggSum, sum.Fn)
	assert.Equal(t, "x", sum.Column)
	assert.Equal(t, "total", s.Items[2].Alias)
}

func TestParse_StarOnlyForCount(t *testing.T) {
	_, err := Parse("SELECT sum(*) FROM f.csv")
	require.Error(t, err)
}

func TestParse_BareAlias(t *testing.T) {
	stmt, err := Parse("SELECT new_deaths new_deaths_1 FROM f.csv")
	require.NoError(t, err)
	s := stmt.(*SelectStmt)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "new_deaths_1", s.Items[0].Alias)
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := Parse("SELECT a FROM f.csv WHERE a = 'oops")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Msg, "unterminated")
}

func TestParse_EscapedQuote(t *testing.T) {
	stmt, err := Parse("SELECT a FROM f.csv WHERE a = 'it''s'")
	require.NoError(t, err)
	cmp := stmt.(*SelectStmt).Where.(*Compare)
	assert.Equal(t, "it's", cmp.Right.(*Literal).Str)
}

func TestParse_MalformedLimit(t *testing.T) {
	_, err := Parse("SELECT a FROM f.csv LIMIT abc")
	require.Error(t, err)

	_, err = Parse("SELECT a FROM f.csv LIMIT -1")
	require.Error(t, err)

	_, err = Parse("SELECT a FROM f.csv LIMIT 1.5")
	require.Error(t, err)
}

func TestParse_MissingFrom(t *testing.T) {
	_, err := Parse("SELECT a, b WHERE a = 1")
	require.Error(t, err)
}

func TestParse_TrailingGarbage(t *testing.T) {
	_, err := Parse("SELECT a FROM f.csv LIMIT 5 nonsense extra")
	require.Error(t, err)
}

func TestParse_GroupByRequiresGroupedProjection(t *testing.T) {
	_, err := Parse("SELECT a, b FROM f.csv GROUP BY a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)

	_, err = Parse("SELECT * FROM f.csv GROUP BY a")
	require.Error(t, err)
}

func TestParse_NoMixedAggregatesWithoutGroupBy(t *testing.T) {
	_, err := Parse("SELECT a, count(*) FROM f.csv")
	require.Error(t, err)
}

func TestParse_BoolAndNegativeLiterals(t *testing.T) {
	stmt, err := Parse("SELECT a FROM f.csv WHERE active = true AND delta >= -3")
	require.NoError(t, err)
	and := stmt.(*SelectStmt).Where.(*Logic)

	b := and.Left.(*Compare).Right.(*Literal)
	assert.Equal(t, LitBool, b.Kind)
	assert.True(t, b.Bool)

	n := and.Right.(*Compare).Right.(*Literal)
	assert.Equal(t, LitInt, n.Kind)
	assert.Equal(t, int64(-3), n.Int)
}

func TestParse_ErrorPositionReported(t *testing.T) {
	_, err := Parse("SELECT a FROM f.csv WHERE a ? 1")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Greater(t, pe.Pos, 0)
}
