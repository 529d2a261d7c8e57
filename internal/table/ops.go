package table

import (
	"context"
	"fmt"
	"slices"

	"github.com/johnwards/wells/internal/lookup"
)

// RenameColumns renames columns per mapping, keeping their position.
func RenameColumns(t *Table, mapping map[string]string) (*Table, error) {
	for from := range mapping {
		if err := t.require(from); err != nil {
			return nil, err
		}
	}
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		if to, ok := mapping[c]; ok {
			cols[i] = to
		} else {
			cols[i] = c
		}
	}
	if dup := duplicate(cols); dup != "" {
		return nil, fmt.Errorf("rename produces duplicate column %q", dup)
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out := make(Row, len(cols))
		for j, c := range t.columns {
			out[cols[j]] = r[c]
		}
		rows[i] = out
	}
	return &Table{columns: cols, rows: rows}, nil
}

func duplicate(cols []string) string {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}

// SelectColumns keeps only the named columns, in the given order.
func SelectColumns(t *Table, columns ...string) (*Table, error) {
	if err := t.require(columns...); err != nil {
		return nil, err
	}
	return New(columns, t.rows), nil
}

// DropColumns removes the named columns.
func DropColumns(t *Table, columns ...string) (*Table, error) {
	if err := t.require(columns...); err != nil {
		return nil, err
	}
	keep := slices.DeleteFunc(t.Columns(), func(c string) bool {
		return slices.Contains(columns, c)
	})
	return New(keep, t.rows), nil
}

// FilterRows keeps rows matching cond.
func FilterRows(t *Table, cond Condition) (*Table, error) {
	if err := t.require(cond.Column); err != nil {
		return nil, err
	}
	var rows []Row
	for _, r := range t.rows {
		if cond.Match(r) {
			rows = append(rows, r)
		}
	}
	return New(t.columns, rows), nil
}

// AddColumn appends a column computed per row. An existing column of the
// same name is overwritten in place.
func AddColumn(t *Table, name string, fn Expr) (*Table, error) {
	cols := t.Columns()
	if !t.HasColumn(name) {
		cols = append(cols, name)
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		v, err := fn(t.Row(i))
		if err != nil {
			return nil, fmt.Errorf("add column %q row %d: %w", name, i, err)
		}
		out := t.project(r)
		out[name] = v
		rows[i] = out
	}
	return &Table{columns: cols, rows: rows}, nil
}

// SortRows orders rows by one column. The sort is stable and missing values
// sort first when ascending.
func SortRows(t *Table, by string, ascending bool) (*Table, error) {
	if err := t.require(by); err != nil {
		return nil, err
	}
	rows := slices.Clone(t.rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compare(a[by], b[by])
		if !ascending {
			c = -c
		}
		return c
	})
	return New(t.columns, rows), nil
}

// FillMissing replaces missing values in column with value.
func FillMissing(t *Table, column string, value any) (*Table, error) {
	return ChangeValuesWhere(t, column, func(r Row) bool { return isMissing(r[column]) },
		func(any) (any, error) { return value, nil })
}

// ChangeValues rewrites every value in column with fn.
func ChangeValues(t *Table, column string, fn func(any) (any, error)) (*Table, error) {
	return ChangeValuesWhere(t, column, func(Row) bool { return true }, fn)
}

// ChangeValuesWhere rewrites values in column with fn on rows where pred
// holds.
func ChangeValuesWhere(t *Table, column string, pred func(Row) bool, fn func(any) (any, error)) (*Table, error) {
	if err := t.require(column); err != nil {
		return nil, err
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out := t.project(r)
		if pred(r) {
			v, err := fn(r[column])
			if err != nil {
				return nil, fmt.Errorf("change %q row %d: %w", column, i, err)
			}
			out[column] = v
		}
		rows[i] = out
	}
	return &Table{columns: t.Columns(), rows: rows}, nil
}

// MapValues replaces each value in column with its lookup value under kind.
// Values without an entry become nil.
func MapValues(ctx context.Context, t *Table, column, kind string, l lookup.Lookup) (*Table, error) {
	cache := make(map[string]any)
	return ChangeValues(t, column, func(v any) (any, error) {
		if isMissing(v) {
			return nil, nil
		}
		key := format(v)
		if out, ok := cache[key]; ok {
			return out, nil
		}
		val, ok, err := l.Value(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			cache[key] = nil
			return nil, nil
		}
		cache[key] = val
		return val, nil
	})
}
