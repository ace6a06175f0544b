package extract

import (
	"os"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// plainToText reads a file as text, sniffing the character encoding and
// decoding to UTF-8. Valid UTF-8 input is returned as-is.
func plainToText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &FormatError{Format: "text", Err: err}
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		// Undetectable bytes: decode lossily as UTF-8.
		return string(raw), nil
	}

	enc, err := htmlindex.Get(result.Charset)
	if err != nil {
		return string(raw), nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(decoded), nil
}
