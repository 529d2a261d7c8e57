package table_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/wells/internal/lookup"
	"github.com/johnwards/wells/internal/table"
	"github.com/johnwards/wells/internal/testhelpers"
)

func sample() *table.Table {
	return table.New(
		[]string{"old_column1", "old_column2", "old_columnA", "old_columnB"},
		[]table.Row{
			{"old_column1": 1.0, "old_column2": 5.0, "old_columnA": "a", "old_columnB": 10.0},
			{"old_column1": 2.0, "old_column2": 6.0, "old_columnA": "b", "old_columnB": 20.0},
			{"old_column1": 3.0, "old_column2": 7.0, "old_columnA": "c", "old_columnB": 30.0},
			{"old_column1": 4.0, "old_column2": 8.0, "old_columnA": "d", "old_columnB": 40.0},
		},
	)
}

func column(t *testing.T, tb *table.Table, name string) []any {
	t.Helper()
	vals, err := tb.Column(name)
	require.NoError(t, err)
	return vals
}

func TestRenameColumns(t *testing.T) {
	in := sample()
	out, err := table.RenameColumns(in, map[string]string{"old_column1": "new_column1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"new_column1", "old_column2", "old_columnA", "old_columnB"}, out.Columns())
	assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, column(t, out, "new_column1"))
	assert.True(t, in.HasColumn("old_column1"), "input must be untouched")

	_, err = table.RenameColumns(in, map[string]string{"missing": "x"})
	assert.ErrorIs(t, err, table.ErrUnknownColumn)

	_, err = table.RenameColumns(in, map[string]string{"old_column1": "old_column2"})
	assert.Error(t, err)
}

func TestSelectAndDropColumns(t *testing.T) {
	out, err := table.SelectColumns(sample(), "old_columnA", "old_column1")
	require.NoError(t, err)
	assert.Equal(t, []string{"old_columnA", "old_column1"}, out.Columns())
	assert.Equal(t, 4, out.Len())

	out, err = table.DropColumns(sample(), "old_column2", "old_columnB")
	require.NoError(t, err)
	assert.Equal(t, []string{"old_column1", "old_columnA"}, out.Columns())
	_, ok := out.Row(0)["old_column2"]
	assert.False(t, ok)

	_, err = table.SelectColumns(sample(), "nope")
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
	_, err = table.DropColumns(sample(), "nope")
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestFilterRows(t *testing.T) {
	tests := []struct {
		where string
		want  []any
	}{
		{"old_column1 > 2", []any{3.0, 4.0}},
		{"old_column1 >= 2", []any{2.0, 3.0, 4.0}},
		{"old_column1 < 2", []any{1.0}},
		{"old_column1 <= 2", []any{1.0, 2.0}},
		{"old_column1 == 3", []any{3.0}},
		{"old_column1 != 3", []any{1.0, 2.0, 4.0}},
		{"old_columnA == 'b'", []any{2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			cond, err := table.ParseCondition(tt.where)
			require.NoError(t, err)
			out, err := table.FilterRows(sample(), cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "old_column1"))
		})
	}
}

func TestParseConditionRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "old_column1", "> 2", "old_column1 >"} {
		_, err := table.ParseCondition(s)
		assert.ErrorIs(t, err, table.ErrBadExpression, s)
	}
}

func TestAddColumn(t *testing.T) {
	expr, err := table.ParseExpr("old_column1 + old_column2")
	require.NoError(t, err)
	out, err := table.AddColumn(sample(), "new_column", expr)
	require.NoError(t, err)

	assert.Equal(t, []any{6.0, 8.0, 10.0, 12.0}, column(t, out, "new_column"))
	assert.Equal(t, "new_column", out.Columns()[4])

	bad, err := table.ParseExpr("missing * 2")
	require.NoError(t, err)
	_, err = table.AddColumn(sample(), "x", bad)
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestSortRows(t *testing.T) {
	out, err := table.SortRows(sample(), "old_column1", false)
	require.NoError(t, err)
	assert.Equal(t, []any{4.0, 3.0, 2.0, 1.0}, column(t, out, "old_column1"))
	assert.Equal(t, []any{"d", "c", "b", "a"}, column(t, out, "old_columnA"))

	withNil := table.New([]string{"v"}, []table.Row{{"v": 2.0}, {"v": nil}, {"v": 1.0}})
	out, err = table.SortRows(withNil, "v", true)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 1.0, 2.0}, column(t, out, "v"))
}

func TestGroupBy(t *testing.T) {
	in := table.New([]string{"well", "oil", "gas"}, []table.Row{
		{"well": "b", "oil": 1.0, "gas": 10.0},
		{"well": "a", "oil": 2.0, "gas": nil},
		{"well": "b", "oil": 3.0, "gas": 30.0},
		{"well": "a", "oil": 4.0, "gas": 40.0},
	})

	out, err := table.GroupBy(in, []string{"well"}, map[string]table.Agg{
		"oil": table.AggSum,
		"gas": table.AggCount,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"well", "gas", "oil"}, out.Columns())
	assert.Equal(t, []any{"a", "b"}, column(t, out, "well"))
	assert.Equal(t, []any{6.0, 4.0}, column(t, out, "oil"))
	assert.Equal(t, []any{1.0, 2.0}, column(t, out, "gas"))

	for agg, want := range map[table.Agg][]any{
		table.AggMean:  {3.0, 2.0},
		table.AggMin:   {2.0, 1.0},
		table.AggMax:   {4.0, 3.0},
		table.AggFirst: {2.0, 1.0},
	} {
		out, err := table.GroupBy(in, []string{"well"}, map[string]table.Agg{"oil": agg})
		require.NoError(t, err, agg)
		assert.Equal(t, want, column(t, out, "oil"), agg)
	}

	_, err = table.GroupBy(in, []string{"well"}, map[string]table.Agg{"well": table.AggSum})
	assert.Error(t, err)
	_, err = table.ParseAgg("median")
	assert.ErrorIs(t, err, table.ErrBadExpression)
}

func TestFillMissing(t *testing.T) {
	in := table.New([]string{"v"}, []table.Row{{"v": 1.0}, {"v": nil}})
	out, err := table.FillMissing(in, "v", 0.0)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 0.0}, column(t, out, "v"))
	assert.Equal(t, []any{1.0, nil}, column(t, in, "v"))
}

func TestChangeValues(t *testing.T) {
	double := func(v any) (any, error) { return v.(float64) * 2, nil }

	out, err := table.ChangeValues(sample(), "old_column1", double)
	require.NoError(t, err)
	assert.Equal(t, []any{2.0, 4.0, 6.0, 8.0}, column(t, out, "old_column1"))

	cond, err := table.ParseCondition("old_column1 > 2")
	require.NoError(t, err)
	out, err = table.ChangeValuesWhere(sample(), "old_column1", cond.Match, double)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 6.0, 8.0}, column(t, out, "old_column1"))
}

func TestMapValues(t *testing.T) {
	l := lookup.NewMemory(map[string]map[string]string{
		"letter": {"a": "alpha", "b": "bravo"},
	})
	out, err := table.MapValues(context.Background(), sample(), "old_columnA", "letter", l)
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", "bravo", nil, nil}, column(t, out, "old_columnA"))
}

func TestPivot(t *testing.T) {
	in := table.New([]string{"index", "columns", "values"}, []table.Row{
		{"index": "X", "columns": "A", "values": 10.0},
		{"index": "X", "columns": "B", "values": 20.0},
		{"index": "Y", "columns": "A", "values": 30.0},
		{"index": "Y", "columns": "B", "values": 40.0},
	})
	out, err := table.Pivot(in, "index", "columns", "values")
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "A", "B"}, out.Columns())
	assert.Equal(t, []any{10.0, 30.0}, column(t, out, "A"))
	assert.Equal(t, []any{20.0, 40.0}, column(t, out, "B"))

	dup := table.New(in.Columns(), append(in.Rows(), table.Row{"index": "X", "columns": "A", "values": 1.0}))
	_, err = table.Pivot(dup, "index", "columns", "values")
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	in, err := table.ReadCSV(strings.NewReader("well,oil,note\nW1,1.5,\nW2,2,dry\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"well", "oil", "note"}, in.Columns())
	assert.Equal(t, table.Row{"well": "W1", "oil": 1.5, "note": nil}, in.Row(0))
	assert.Equal(t, table.Row{"well": "W2", "oil": 2.0, "note": "dry"}, in.Row(1))

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf, in))
	assert.Equal(t, "well,oil,note\nW1,1.5,\nW2,2,dry\n", buf.String())
}

func TestWriteJSONKeepsColumnOrder(t *testing.T) {
	in := table.New([]string{"z", "a"}, []table.Row{{"z": 1.0, "a": nil}})
	var buf bytes.Buffer
	require.NoError(t, table.WriteJSON(&buf, in))
	assert.Equal(t, "[\n    {\n        \"z\": 1,\n        \"a\": null\n    }\n]\n", buf.String())
}

func TestToSQLReplacesTable(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, table.ToSQL(ctx, db, "out", sample()))
	require.NoError(t, table.ToSQL(ctx, db, "out", sample()))

	rows, err := db.QueryContext(ctx, `SELECT old_column1, old_columnA FROM out ORDER BY old_column1`)
	require.NoError(t, err)
	got, err := table.FromSQLRows(rows)
	require.NoError(t, err)

	assert.Equal(t, 4, got.Len())
	assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, column(t, got, "old_column1"))
	assert.Equal(t, []any{"a", "b", "c", "d"}, column(t, got, "old_columnA"))
}
