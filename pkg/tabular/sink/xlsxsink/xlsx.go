// Package xlsxsink writes export tables as worksheets of a single spreadsheet
// workbook.
package xlsxsink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/openrow/tabular/pkg/tabular/record"
)

const defaultSheet = "Sheet1"

// Workbook is a sink.TableSink producing one worksheet per table. Rows are
// appended in arrival order; the workbook is written out on Close.
type Workbook struct {
	path    string
	file    *excelize.File
	nextRow map[string]int
	columns map[string][]string
}

// New creates a workbook that will be saved to path on Close.
func New(path string) *Workbook {
	return &Workbook{
		path:    path,
		file:    excelize.NewFile(),
		nextRow: map[string]int{},
		columns: map[string][]string{},
	}
}

// WriteTable implements sink.TableSink.
func (w *Workbook) WriteTable(name string, columns []string, rows []record.Row, header bool) error {
	if _, ok := w.nextRow[name]; !ok {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		w.nextRow[name] = 1
	}
	if header {
		w.columns[name] = append([]string(nil), columns...)
		cells := make([]any, len(columns))
		for i, col := range columns {
			cells[i] = col
		}
		if err := w.writeRow(name, cells); err != nil {
			return err
		}
	}
	cols := w.columns[name]
	for _, row := range rows {
		cells := make([]any, len(cols))
		for i, col := range cols {
			cells[i] = row[col]
		}
		if err := w.writeRow(name, cells); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) writeRow(sheet string, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.nextRow[sheet])
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row to sheet %q: %w", sheet, err)
	}
	w.nextRow[sheet]++
	return nil
}

// Close drops the default empty sheet and saves the workbook.
func (w *Workbook) Close() error {
	if len(w.nextRow) > 0 {
		if err := w.file.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return w.file.Close()
}
