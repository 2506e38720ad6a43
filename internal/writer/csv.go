// Package writer exports extraction results to CSV for spreadsheet review.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/coerce"
	"github.com/insightdelivered/statement-extractor/internal/engine"
)

// CSVWriter writes output items to CSV, failed matches included so nothing
// detected in the statement disappears from the export.
type CSVWriter struct {
	// IncludeHeader controls the metadata rows above the column header.
	IncludeHeader bool
	// Source labels the exported document (file name, document type).
	Source string
}

// WriteToFile writes the items to a CSV file at path.
func (w *CSVWriter) WriteToFile(path string, items []engine.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, items)
}

// Write writes the items in CSV form to out.
func (w *CSVWriter) Write(out io.Writer, items []engine.Item) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeHeader && w.Source != "" {
		if err := cw.Write([]string{"# Source", w.Source}); err != nil {
			return err
		}
	}

	header := []string{"Line", "Date", "Type", "Security", "WKN", "Shares", "Amount", "Currency", "Tax", "Fee", "Status"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range items {
		if err := cw.Write(itemRow(item)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	return cw.Error()
}

func itemRow(item engine.Item) []string {
	row := make([]string, 11)
	row[0] = strconv.Itoa(item.Line)

	if t := item.Transaction; t != nil {
		row[1] = t.Date.Format("2006-01-02")
		row[2] = string(t.Type)
		if t.Security != nil {
			row[3] = t.Security.Name
			row[4] = t.Security.WKN
		}
		row[5] = decimal.New(t.Shares, -coerce.SharesScale).String()
		if t.Amount != nil {
			row[6] = t.Amount.Display()
			row[7] = t.Amount.Currency().Code
		}
		if t.Tax != nil {
			row[8] = t.Tax.Display()
		}
		if t.Fee != nil {
			row[9] = t.Fee.Display()
		}
	}

	if item.Failed() {
		row[10] = "FAILED: " + item.Failure
	} else {
		row[10] = "OK"
	}
	return row
}
