package table

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Agg names an aggregation applied by GroupBy.
type Agg string

const (
	AggSum   Agg = "sum"
	AggMean  Agg = "mean"
	AggMin   Agg = "min"
	AggMax   Agg = "max"
	AggCount Agg = "count"
	AggFirst Agg = "first"
)

// ParseAgg validates an aggregation name.
func ParseAgg(s string) (Agg, error) {
	switch a := Agg(strings.ToLower(s)); a {
	case AggSum, AggMean, AggMin, AggMax, AggCount, AggFirst:
		return a, nil
	}
	return "", fmt.Errorf("aggregation %q: %w", s, ErrBadExpression)
}

// GroupBy groups rows by the by columns and aggregates the columns named in
// aggs. Output columns are the by columns followed by the aggregated columns
// in name order; groups are ordered by their key values.
func GroupBy(t *Table, by []string, aggs map[string]Agg) (*Table, error) {
	if len(by) == 0 {
		return nil, fmt.Errorf("group by needs at least one column")
	}
	if err := t.require(by...); err != nil {
		return nil, err
	}
	aggCols := slices.Sorted(maps.Keys(aggs))
	if err := t.require(aggCols...); err != nil {
		return nil, err
	}

	type group struct {
		key  Row
		rows []Row
	}
	groups := make(map[string]*group)
	var order []*group
	for _, r := range t.rows {
		parts := make([]string, len(by))
		for i, c := range by {
			parts[i] = fmt.Sprintf("%T:%s", r[c], format(r[c]))
		}
		k := strings.Join(parts, "\x00")
		g, ok := groups[k]
		if !ok {
			key := make(Row, len(by))
			for _, c := range by {
				key[c] = r[c]
			}
			g = &group{key: key}
			groups[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
	}
	slices.SortStableFunc(order, func(a, b *group) int {
		for _, c := range by {
			if d := compare(a.key[c], b.key[c]); d != 0 {
				return d
			}
		}
		return 0
	})

	cols := append(slices.Clone(by), aggCols...)
	if dup := duplicate(cols); dup != "" {
		return nil, fmt.Errorf("group by column %q is also aggregated", dup)
	}
	rows := make([]Row, 0, len(order))
	for _, g := range order {
		out := maps.Clone(g.key)
		for _, c := range aggCols {
			v, err := aggregate(aggs[c], c, g.rows)
			if err != nil {
				return nil, err
			}
			out[c] = v
		}
		rows = append(rows, out)
	}
	return &Table{columns: cols, rows: rows}, nil
}

func aggregate(agg Agg, column string, rows []Row) (any, error) {
	var vals []any
	for _, r := range rows {
		if !isMissing(r[column]) {
			vals = append(vals, r[column])
		}
	}
	switch agg {
	case AggCount:
		return float64(len(vals)), nil
	case AggFirst:
		if len(vals) == 0 {
			return nil, nil
		}
		return vals[0], nil
	case AggMin, AggMax:
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			c := compare(v, best)
			if (agg == AggMin && c < 0) || (agg == AggMax && c > 0) {
				best = v
			}
		}
		return best, nil
	case AggSum, AggMean:
		var sum float64
		for _, v := range vals {
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%s of %q: non-numeric value %v: %w", agg, column, v, ErrBadExpression)
			}
			sum += f
		}
		if agg == AggSum {
			return sum, nil
		}
		if len(vals) == 0 {
			return nil, nil
		}
		return sum / float64(len(vals)), nil
	}
	return nil, fmt.Errorf("aggregation %q: %w", agg, ErrBadExpression)
}

// Pivot reshapes t so each distinct value of columns becomes a column
// holding values, with one row per distinct index value. Both the new rows
// and the new columns are sorted. A repeated (index, columns) pair is an
// error.
func Pivot(t *Table, index, columns, values string) (*Table, error) {
	if err := t.require(index, columns, values); err != nil {
		return nil, err
	}
	var keys, names []any
	cells := make(map[string]map[string]any)
	for _, r := range t.rows {
		ik, ck := format(r[index]), format(r[columns])
		row, ok := cells[ik]
		if !ok {
			row = make(map[string]any)
			cells[ik] = row
			keys = append(keys, r[index])
		}
		if _, dup := row[ck]; dup {
			return nil, fmt.Errorf("pivot: duplicate entry for %s=%s, %s=%s", index, ik, columns, ck)
		}
		if !slices.ContainsFunc(names, func(n any) bool { return format(n) == ck }) {
			names = append(names, r[columns])
		}
		row[ck] = r[values]
	}
	slices.SortStableFunc(keys, compare)
	slices.SortStableFunc(names, compare)

	cols := []string{index}
	for _, n := range names {
		cols = append(cols, format(n))
	}
	if dup := duplicate(cols); dup != "" {
		return nil, fmt.Errorf("pivot produces duplicate column %q", dup)
	}
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		out := Row{index: k}
		for _, n := range names {
			out[format(n)] = cells[format(k)][format(n)]
		}
		rows = append(rows, out)
	}
	return &Table{columns: cols, rows: rows}, nil
}
