// Package export dumps schema tables to a blob store.
package export

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/johnwards/wells/internal/blob"
	"github.com/johnwards/wells/internal/store"
	"github.com/johnwards/wells/internal/table"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv or json in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) contentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Result describes a finished export.
type Result struct {
	Key  string
	Rows int
}

// Table writes every row of a schema table to dst as "<table>.<format>".
// Table names outside the schema return store.ErrUnknownTable.
func Table(ctx context.Context, db *sql.DB, name string, format Format, dst blob.Store) (Result, error) {
	if err := store.ValidateTable(name); err != nil {
		return Result{}, err
	}
	rows, err := db.QueryContext(ctx, `SELECT * FROM `+name+` ORDER BY 1`)
	if err != nil {
		return Result{}, fmt.Errorf("query %s: %w", name, err)
	}
	t, err := table.FromSQLRows(rows)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", name, err)
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = table.WriteCSV(&buf, t)
	case FormatJSON:
		err = table.WriteJSON(&buf, t)
	default:
		return Result{}, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", name, err)
	}

	key := name + "." + string(format)
	if err := dst.Put(ctx, key, bytes.NewReader(buf.Bytes()), format.contentType()); err != nil {
		return Result{}, err
	}
	return Result{Key: key, Rows: t.Len()}, nil
}
