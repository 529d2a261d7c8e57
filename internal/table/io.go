package table

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadCSV reads a table from CSV with a header row. Empty cells become nil,
// cells that parse as numbers become float64 and the rest stay strings.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return New(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if dup := duplicate(header); dup != "" {
		return nil, fmt.Errorf("csv header repeats column %q", dup)
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(header))
		for i, c := range header {
			row[c] = inferValue(rec[i])
		}
		rows = append(rows, row)
	}
	return &Table{columns: header, rows: rows}, nil
}

func inferValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// WriteCSV writes t as CSV with a header row. Missing values are written as
// empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	rec := make([]string, len(t.columns))
	for _, r := range t.rows {
		for i, c := range t.columns {
			rec[i] = format(r[c])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes t as an indented JSON array of records whose keys follow
// column order.
func WriteJSON(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range t.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, c := range t.columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(c)
			buf.Write(k)
			buf.WriteByte(':')
			v, err := json.Marshal(jsonValue(r[c]))
			if err != nil {
				return fmt.Errorf("encode %q row %d: %w", c, i, err)
			}
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}

func jsonValue(v any) any {
	if isMissing(v) {
		return nil
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// FromSQLRows reads every remaining row of rows into a table and closes it.
func FromSQLRows(rows *sql.Rows) (*Table, error) {
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Table{columns: cols, rows: out}, nil
}

// ToSQL replaces table name in db with the contents of t. Columns whose
// values are all numeric become REAL, the rest TEXT.
func ToSQL(ctx context.Context, db *sql.DB, name string, t *Table) error {
	if name == "" || len(t.columns) == 0 {
		return fmt.Errorf("to sql: table name and columns are required")
	}
	defs := make([]string, len(t.columns))
	marks := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = quoteIdent(c) + " " + sqlType(t, c)
		marks[i] = "?"
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	args := make([]any, len(t.columns))
	for i, r := range t.rows {
		for j, c := range t.columns {
			args[j] = sqlValue(r[c])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", name, i, err)
		}
	}
	return tx.Commit()
}

func sqlType(t *Table, column string) string {
	for _, r := range t.rows {
		v := r[column]
		if isMissing(v) {
			continue
		}
		if _, ok := toFloat(v); !ok {
			return "TEXT"
		}
	}
	return "REAL"
}

func sqlValue(v any) any {
	if isMissing(v) {
		return nil
	}
	if tm, ok := v.(time.Time); ok {
		return tm.Format(time.RFC3339)
	}
	return v
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
