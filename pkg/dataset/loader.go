package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when coercing string cells to timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// LoadFile loads a dataset from a file, dispatching on the extension.
// Supported formats: .csv and .json (array of flat objects).
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(name, f)
	case ".json":
		return LoadJSON(name, f)
	default:
		return nil, fmt.Errorf("dataset: unsupported format %q", filepath.Ext(path))
	}
}

// LoadCSV reads a CSV document with a header row and coerces cell values
// to numbers, booleans, and timestamps on a best-effort, per-cell basis.
// Empty cells become nil.
func LoadCSV(name string, r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return New(name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: reading CSV header: %w", err)
	}

	columns := make([]Column, len(header))
	for i, h := range header {
		columns[i] = Column{Name: strings.TrimSpace(h)}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading CSV row: %w", err)
		}
		for i := range columns {
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			columns[i].Values = append(columns[i].Values, coerce(cell))
		}
	}
	return New(name, columns)
}

// LoadJSON reads an array of flat JSON objects. Column order follows the
// first object's keys as encountered; rows missing a key get nil.
func LoadJSON(name string, r io.Reader) (*Dataset, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("dataset: decoding JSON: %w", err)
	}
	return FromRows(name, rows)
}

// FromRows builds a Dataset from row maps. The column set is the union of
// all keys, sorted for determinism since map order is lost; missing cells
// become nil.
func FromRows(name string, rows []map[string]any) (*Dataset, error) {
	index := make(map[string]int)
	var order []string
	for _, row := range rows {
		for k := range row {
			if _, ok := index[k]; !ok {
				index[k] = 0
				order = append(order, k)
			}
		}
	}
	sort.Strings(order)
	for i, k := range order {
		index[k] = i
	}
	columns := make([]Column, len(order))
	for i, k := range order {
		columns[i] = Column{Name: k, Values: make([]any, len(rows))}
	}
	for ri, row := range rows {
		for k, v := range row {
			columns[index[k]].Values[ri] = normalizeJSON(v)
		}
	}
	return New(name, columns)
}

func normalizeJSON(v any) any {
	switch x := v.(type) {
	case string:
		if t, ok := parseTime(x); ok {
			return t
		}
		return x
	case float64, bool, nil:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// coerce converts a CSV cell to its most specific type.
func coerce(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
		return f
	}
	switch strings.ToLower(cell) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	if t, ok := parseTime(cell); ok {
		return t
	}
	return cell
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
