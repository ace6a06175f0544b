package extract

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExcelToText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "product")
	f.SetCellValue("Sheet1", "B1", "units")
	f.SetCellValue("Sheet1", "A2", "widgets")
	f.SetCellValue("Sheet1", "B2", 42)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	f.Close()

	text, err := Text(path, "xlsx")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}

	if !strings.Contains(text, "=== Sheet1 ===") {
		t.Errorf("sheet header missing: %q", text)
	}
	if !strings.Contains(text, "product\tunits") {
		t.Errorf("header row missing: %q", text)
	}
	if !strings.Contains(text, "widgets\t42") {
		t.Errorf("data row missing: %q", text)
	}
}

func TestExcelInvalidBytes(t *testing.T) {
	path := writeFile(t, "fake.xlsx", []byte("definitely not a workbook"))
	if _, err := Text(path, "xlsx"); err == nil {
		t.Error("expected error for invalid workbook bytes")
	}
}
