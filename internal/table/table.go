// Package table provides an immutable in-memory table and pure
// transformations over it. Every operation returns a new Table and leaves its
// input untouched.
package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// ErrUnknownColumn is returned when an operation names a column the table
// does not have.
var ErrUnknownColumn = errors.New("unknown column")

// Row maps column name to value. Values are nil, float64, int64, string, bool
// or time.Time.
type Row map[string]any

// Table is an ordered set of columns and rows.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a Table from copies of columns and rows. Row keys outside
// columns are dropped.
func New(columns []string, rows []Row) *Table {
	t := &Table{columns: slices.Clone(columns), rows: make([]Row, len(rows))}
	for i, r := range rows {
		t.rows[i] = t.project(r)
	}
	return t
}

func (t *Table) project(r Row) Row {
	out := make(Row, len(t.columns))
	for _, c := range t.columns {
		out[c] = r[c]
	}
	return out
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) Row { return t.project(t.rows[i]) }

// Rows returns copies of every row.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Column returns the values of one column.
func (t *Table) Column(name string) ([]any, error) {
	if err := t.require(name); err != nil {
		return nil, err
	}
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[name]
	}
	return out, nil
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

func (t *Table) require(names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("%q: %w", n, ErrUnknownColumn)
		}
	}
	return nil
}

// toFloat converts numeric values to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// isMissing reports nil and NaN.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

// compare orders values: missing first, then numbers, then bools, then
// times, then everything else by its string form.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 3:
		return a.(time.Time).Compare(b.(time.Time))
	}
	sa, sb := format(a), format(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func rank(v any) int {
	if isMissing(v) {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	switch v.(type) {
	case bool:
		return 2
	case time.Time:
		return 3
	}
	return 4
}

// format renders a value as text; missing values render empty.
func format(v any) string {
	if isMissing(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
