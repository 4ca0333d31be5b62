package xlsxsink

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/openrow/tabular/pkg/tabular/record"
)

func TestWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	w := New(path)

	columns := []string{"name", "age"}
	if err := w.WriteTable("main", columns, []record.Row{{"name": "ann", "age": 34}}, true); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if err := w.WriteTable("kids", []string{"kid"}, []record.Row{{"kid": "bo"}}, true); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	// second batch for an existing sheet, no header
	if err := w.WriteTable("main", columns, []record.Row{{"name": "cy"}}, false); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("Expected 2 sheets, got %v", sheets)
	}

	for cell, want := range map[string]string{
		"A1": "name", "B1": "age",
		"A2": "ann", "B2": "34",
		"A3": "cy",
	} {
		got, err := f.GetCellValue("main", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
		}
		if got != want {
			t.Errorf("main!%s = %q, want %q", cell, got, want)
		}
	}

	got, err := f.GetCellValue("kids", "A2")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if got != "bo" {
		t.Errorf("kids!A2 = %q, want bo", got)
	}
}
