package holdings

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultStatus is assigned when the source row has no status column value.
const DefaultStatus = "소장중"

// LoadCSV parses holdings records from a header-keyed CSV stream. A UTF-8
// BOM on the first header cell is tolerated (exports from spreadsheet tools
// routinely carry one). Rows without a title are skipped; a missing status
// defaults to DefaultStatus.
func LoadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := index["isbn"]; !ok {
		return nil, fmt.Errorf("CSV header is missing the isbn column")
	}
	if _, ok := index["title"]; !ok {
		return nil, fmt.Errorf("CSV header is missing the title column")
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := Record{
			ISBN:            field(row, "isbn"),
			Title:           field(row, "title"),
			Author:          field(row, "author"),
			Publisher:       field(row, "publisher"),
			CallNumber:      field(row, "call_number"),
			PublicationYear: field(row, "publication_year"),
			Description:     field(row, "description"),
			Status:          field(row, "status"),
		}
		if rec.Title == "" {
			continue
		}
		if rec.Status == "" {
			rec.Status = DefaultStatus
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadCSVFile opens and parses a holdings CSV on disk.
func LoadCSVFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(f)
}
