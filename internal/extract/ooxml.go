package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// docxToText reads the main document part of a DOCX container. Text runs
// (<w:t>) are concatenated; paragraph ends (</w:p>) become line breaks.
func docxToText(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", &FormatError{Format: "docx", Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", &FormatError{Format: "docx", Err: err}
		}
		defer rc.Close()

		text, err := xmlText(rc, "t", "p")
		if err != nil {
			return "", &FormatError{Format: "docx", Err: err}
		}
		return text, nil
	}

	return "", &FormatError{Format: "docx", Err: fmt.Errorf("no document body found")}
}

// pptxToText reads every slide part of a PPTX container in slide order.
// Text runs (<a:t>) are concatenated; slides are separated by blank lines.
func pptxToText(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", &FormatError{Format: "pptx", Err: err}
	}
	defer r.Close()

	var slides []string
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		slides = append(slides, f.Name)
	}
	if len(slides) == 0 {
		return "", &FormatError{Format: "pptx", Err: fmt.Errorf("no slides found")}
	}
	// Order by slide number; lexicographic order puts slide10 before
	// slide2.
	sort.SliceStable(slides, func(i, j int) bool {
		return slideNumber(slides[i]) < slideNumber(slides[j])
	})

	var parts []string
	for _, name := range slides {
		for _, f := range r.File {
			if f.Name != name {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return "", &FormatError{Format: "pptx", Err: err}
			}
			text, err := xmlText(rc, "t", "p")
			rc.Close()
			if err != nil {
				return "", &FormatError{Format: "pptx", Err: err}
			}
			if strings.TrimSpace(text) != "" {
				parts = append(parts, strings.TrimSpace(text))
			}
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// slideNumber extracts N from "ppt/slides/slideN.xml"; unparsable names
// sort last.
func slideNumber(name string) int {
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// xmlText streams an XML document and collects character data inside
// elements with the given local name, inserting a newline at the close of
// each breakElem.
func xmlText(r io.Reader, textElem, breakElem string) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textElem {
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == textElem && depth > 0 {
				depth--
			}
			if t.Name.Local == breakElem {
				b.WriteString("\n")
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
