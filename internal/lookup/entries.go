package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var entryHeader = []string{"kind", "code", "value"}

// ReadEntries parses CSV with a kind,code,value header. Codes keep their
// text form, so "01" stays "01".
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(entryHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read entries header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	if !slices.Equal(header, entryHeader) {
		return nil, fmt.Errorf("entries header must be %s, got %s",
			strings.Join(entryHeader, ","), strings.Join(header, ","))
	}

	var out []Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read entries: %w", err)
		}
		e := Entry{Kind: rec[0], Code: rec[1], Value: rec[2]}
		if e.Kind == "" || e.Code == "" {
			return nil, fmt.Errorf("entry %d: kind and code are required", len(out)+1)
		}
		out = append(out, e)
	}
}
