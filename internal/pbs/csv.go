package pbs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cmcmaster/rheum-biologics/internal/model"
)

// parseCSV reads a header-first CSV stream into raw rows. Rows whose every
// cell is blank or the literal "null" are dropped; short rows are padded by
// reading only the columns present.
func parseCSV(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var table model.Table
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		row := make(model.Row, len(header))
		empty := true
		for i, col := range header {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = record[i]
			if v := strings.TrimSpace(record[i]); v != "" && !strings.EqualFold(v, "null") {
				empty = false
			}
		}
		if empty {
			continue
		}
		table = append(table, row)
	}
	return table, nil
}
