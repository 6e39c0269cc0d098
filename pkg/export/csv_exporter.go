package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

var errNoHeaders = errors.New("dataset has no headers")

// Dataset is tabular export content; each row is keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record projects row i onto the header order. Missing cells are empty.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for col, header := range d.Headers {
		record[col] = d.Rows[i][header]
	}
	return record
}

// CSVExporter writes datasets as RFC 4180 CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render encodes the dataset. CSV has no title row, so title is ignored.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("render csv: %w", errNoHeaders)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i := range data.Rows {
		record := data.Record(i)
		for col := range record {
			record[col] = neutralizeFormula(record[col])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// neutralizeFormula prefixes cells that spreadsheet apps would evaluate as formulas.
// Customer notes and names are free text, so they can start with any of these.
func neutralizeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	if strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
