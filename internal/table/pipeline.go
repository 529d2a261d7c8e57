package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/johnwards/wells/internal/lookup"
)

// StepFunc is one pipeline stage.
type StepFunc func(context.Context, *Table) (*Table, error)

// Pipeline applies named steps in order.
type Pipeline struct {
	names []string
	steps []StepFunc
}

// NewPipeline returns an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Then appends a step and returns p.
func (p *Pipeline) Then(name string, fn StepFunc) *Pipeline {
	p.names = append(p.names, name)
	p.steps = append(p.steps, fn)
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Apply runs every step against t and returns the final table. The input is
// never modified.
func (p *Pipeline) Apply(ctx context.Context, t *Table) (*Table, error) {
	for i, fn := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := fn(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, p.names[i], err)
		}
		t = next
	}
	return t, nil
}

// Step is the YAML form of a pipeline step. Which fields apply depends on
// Op:
//
//	rename        columns: {old: new}
//	select, drop  columns: [a, b]
//	filter        where: "a > 2"
//	add_column    name, expr: "a + b"
//	sort          column, descending
//	group_by      by: [a], aggregate: {b: sum}
//	fill_missing  column, value
//	lookup        column, kind
//	change_values column, expr, where (optional)
//	pivot         index, pivot, values
type Step struct {
	Op         string            `yaml:"op"`
	Columns    yaml.Node         `yaml:"columns"`
	Where      string            `yaml:"where"`
	Name       string            `yaml:"name"`
	Expr       string            `yaml:"expr"`
	Column     string            `yaml:"column"`
	Descending bool              `yaml:"descending"`
	By         []string          `yaml:"by"`
	Aggregate  map[string]string `yaml:"aggregate"`
	Value      any               `yaml:"value"`
	Kind       string            `yaml:"kind"`
	Index      string            `yaml:"index"`
	Pivot      string            `yaml:"pivot"`
	Values     string            `yaml:"values"`
}

type pipelineFile struct {
	Steps []Step `yaml:"steps"`
}

// LoadPipeline reads a YAML pipeline file. l resolves lookup steps and may
// be nil when the file has none.
func LoadPipeline(path string, l lookup.Lookup) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	return ParsePipeline(data, l)
}

// ParsePipeline compiles a YAML pipeline document.
func ParsePipeline(data []byte, l lookup.Lookup) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f pipelineFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	p := NewPipeline()
	for i, s := range f.Steps {
		fn, err := s.compile(l)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		p.Then(s.Op, fn)
	}
	return p, nil
}

func (s Step) compile(l lookup.Lookup) (StepFunc, error) {
	switch s.Op {
	case "rename":
		var mapping map[string]string
		if err := s.Columns.Decode(&mapping); err != nil || len(mapping) == 0 {
			return nil, fmt.Errorf("rename needs a columns mapping")
		}
		return func(_ context.Context, t *Table) (*Table, error) { return RenameColumns(t, mapping) }, nil

	case "select", "drop":
		var cols []string
		if err := s.Columns.Decode(&cols); err != nil || len(cols) == 0 {
			return nil, fmt.Errorf("%s needs a columns list", s.Op)
		}
		if s.Op == "select" {
			return func(_ context.Context, t *Table) (*Table, error) { return SelectColumns(t, cols...) }, nil
		}
		return func(_ context.Context, t *Table) (*Table, error) { return DropColumns(t, cols...) }, nil

	case "filter":
		cond, err := ParseCondition(s.Where)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, t *Table) (*Table, error) { return FilterRows(t, cond) }, nil

	case "add_column":
		if s.Name == "" {
			return nil, fmt.Errorf("add_column needs a name")
		}
		expr, err := ParseExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, t *Table) (*Table, error) { return AddColumn(t, s.Name, expr) }, nil

	case "sort":
		return func(_ context.Context, t *Table) (*Table, error) {
			return SortRows(t, s.Column, !s.Descending)
		}, nil

	case "group_by":
		aggs := make(map[string]Agg, len(s.Aggregate))
		for col, name := range s.Aggregate {
			a, err := ParseAgg(name)
			if err != nil {
				return nil, err
			}
			aggs[col] = a
		}
		return func(_ context.Context, t *Table) (*Table, error) { return GroupBy(t, s.By, aggs) }, nil

	case "fill_missing":
		v := normalize(s.Value)
		return func(_ context.Context, t *Table) (*Table, error) { return FillMissing(t, s.Column, v) }, nil

	case "lookup":
		if l == nil {
			return nil, fmt.Errorf("lookup step needs a lookup backend")
		}
		if s.Kind == "" {
			return nil, fmt.Errorf("lookup needs a kind")
		}
		return func(ctx context.Context, t *Table) (*Table, error) {
			return MapValues(ctx, t, s.Column, s.Kind, l)
		}, nil

	case "change_values":
		expr, err := ParseExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		match := func(Row) bool { return true }
		if s.Where != "" {
			cond, err := ParseCondition(s.Where)
			if err != nil {
				return nil, err
			}
			match = cond.Match
		}
		return func(_ context.Context, t *Table) (*Table, error) {
			if err := t.require(s.Column); err != nil {
				return nil, err
			}
			return AddColumn(t, s.Column, func(r Row) (any, error) {
				if !match(r) {
					return r[s.Column], nil
				}
				return expr(r)
			})
		}, nil

	case "pivot":
		return func(_ context.Context, t *Table) (*Table, error) {
			return Pivot(t, s.Index, s.Pivot, s.Values)
		}, nil
	}
	return nil, fmt.Errorf("unknown op %q", s.Op)
}

// normalize maps YAML integers onto the float64 numbers tables carry.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}
