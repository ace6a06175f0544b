package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

func pdfToText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &FormatError{Format: "pdf", Err: err}
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", &FormatError{Format: "pdf", Err: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", &FormatError{Format: "pdf", Err: err}
	}
	return buf.String(), nil
}
