package extract

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelToText renders each sheet of a workbook as tab-separated rows,
// prefixed with a sheet header.
func excelToText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", &FormatError{Format: "excel", Err: err}
	}
	defer f.Close()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", &FormatError{Format: "excel", Err: err}
		}

		var b strings.Builder
		b.WriteString("=== " + sheet + " ===\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		parts = append(parts, strings.TrimRight(b.String(), "\n"))
	}

	return strings.Join(parts, "\n\n"), nil
}

// csvToText renders a CSV file as tab-separated rows.
func csvToText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FormatError{Format: "csv", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := r.ReadAll()
	if err != nil {
		return "", &FormatError{Format: "csv", Err: err}
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = strings.Join(rec, "\t")
	}
	return strings.Join(lines, "\n"), nil
}
