// Package extract converts uploaded files into plain text. It is pure and
// stateless: every function maps a local file path to text or a labeled
// error, with no side effects on the file.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormatError labels an extraction failure with the format that produced
// it. The message is shown to the user verbatim.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("reading %s file: %v", strings.ToUpper(e.Format), e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// extractors dispatches by extension. Legacy binary variants (doc, xls,
// ppt) are routed to their modern readers; when the bytes are truly the old
// OLE format the reader fails and the user gets the labeled error.
var extractors = map[string]func(path string) (string, error){
	"pdf":  pdfToText,
	"docx": docxToText,
	"doc":  docxToText,
	"pptx": pptxToText,
	"ppt":  pptxToText,
	"odp":  pptxToText,
	"xlsx": excelToText,
	"xls":  excelToText,
	"ods":  excelToText,
	"csv":  csvToText,
}

// Text extracts the content of the file at path, dispatching on ext
// (lowercase, no dot). Extensions without a dedicated reader are decoded
// as encoding-sniffed plain text.
func Text(path, ext string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}

	fn, ok := extractors[ext]
	if !ok {
		fn = plainToText
	}

	text, err := fn(path)
	if err != nil {
		if _, ok := err.(*FormatError); ok {
			return "", err
		}
		return "", &FormatError{Format: extLabel(ext), Err: err}
	}
	return text, nil
}

func extLabel(ext string) string {
	if ext == "" {
		return "text"
	}
	return ext
}

// Ext returns the lowercase extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
