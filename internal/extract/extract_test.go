package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// writeZip builds a zip container with the given member files.
func writeZip(t *testing.T, name string, members map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for member, content := range members {
		f, err := w.Create(member)
		if err != nil {
			t.Fatalf("creating zip member: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip member: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return writeFile(t, name, buf.Bytes())
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestDocxToText(t *testing.T) {
	path := writeZip(t, "sample.docx", map[string]string{
		"word/document.xml": docxBody,
	})

	text, err := Text(path, "docx")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if !strings.Contains(text, "First paragraph.") {
		t.Errorf("missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "Second paragraph.") {
		t.Errorf("split runs not joined: %q", text)
	}
}

func TestDocxMissingBody(t *testing.T) {
	path := writeZip(t, "empty.docx", map[string]string{"other.xml": "<x/>"})

	_, err := Text(path, "docx")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Format != "docx" {
		t.Errorf("format label = %q", fe.Format)
	}
}

const slideBody = `<?xml version="1.0"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>Slide text here</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`

func TestPptxToText(t *testing.T) {
	path := writeZip(t, "deck.pptx", map[string]string{
		"ppt/slides/slide1.xml": slideBody,
		"ppt/slides/slide2.xml": strings.ReplaceAll(slideBody, "Slide text here", "Second slide"),
	})

	text, err := Text(path, "pptx")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if !strings.Contains(text, "Slide text here") || !strings.Contains(text, "Second slide") {
		t.Errorf("slide text missing: %q", text)
	}
}

func TestPptxSlidesInNumericOrder(t *testing.T) {
	slide := func(s string) string { return strings.ReplaceAll(slideBody, "Slide text here", s) }
	path := writeZip(t, "deck.pptx", map[string]string{
		"ppt/slides/slide10.xml": slide("tenth"),
		"ppt/slides/slide2.xml":  slide("second"),
		"ppt/slides/slide1.xml":  slide("first"),
	})

	text, err := Text(path, "pptx")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if strings.Index(text, "first") > strings.Index(text, "second") ||
		strings.Index(text, "second") > strings.Index(text, "tenth") {
		t.Errorf("slides out of order: %q", text)
	}
}

func TestCSVToText(t *testing.T) {
	path := writeFile(t, "data.csv", []byte("name,qty\napples,3\npears,5\n"))

	text, err := Text(path, "csv")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	want := "name\tqty\napples\t3\npears\t5"
	if text != want {
		t.Errorf("Text() = %q, want %q", text, want)
	}
}

func TestPlainTextUTF8(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("plain utf-8 content"))

	text, err := Text(path, "txt")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if text != "plain utf-8 content" {
		t.Errorf("Text() = %q", text)
	}
}

func TestPlainTextLatin1(t *testing.T) {
	// "café" encoded as ISO-8859-1: 0xE9 is not valid UTF-8.
	latin1 := []byte{'c', 'a', 'f', 0xE9, ' ', 'a', 'u', ' ', 'l', 'a', 'i', 't'}
	path := writeFile(t, "menu.txt", latin1)

	text, err := Text(path, "txt")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if !strings.Contains(text, "caf") {
		t.Errorf("decoded text = %q", text)
	}
}

func TestUnknownExtensionFallsBackToPlainText(t *testing.T) {
	path := writeFile(t, "script.lua", []byte("print('hello')"))

	text, err := Text(path, "lua")
	if err != nil {
		t.Fatalf("Text() error: %v", err)
	}
	if text != "print('hello')" {
		t.Errorf("Text() = %q", text)
	}
}

func TestPDFInvalidBytes(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("not a pdf at all"))

	_, err := Text(path, "pdf")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if fe.Format != "pdf" {
		t.Errorf("format label = %q", fe.Format)
	}
}

func TestTextMissingFile(t *testing.T) {
	if _, err := Text(filepath.Join(t.TempDir(), "gone.txt"), "txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectTypeOOXML(t *testing.T) {
	tests := []struct {
		member string
		want   string
	}{
		{"word/document.xml", "docx"},
		{"xl/workbook.xml", "xlsx"},
		{"ppt/presentation.xml", "pptx"},
	}
	for _, tt := range tests {
		path := writeZip(t, "blob.bin", map[string]string{tt.member: "<x/>"})
		if got := DetectType(path); got != tt.want {
			t.Errorf("DetectType(%s) = %q, want %q", tt.member, got, tt.want)
		}
	}
}

func TestDetectTypePrefersDeclaredExtensionForText(t *testing.T) {
	path := writeFile(t, "main.go", []byte("package main\n"))
	if got := DetectType(path); got != "go" {
		t.Errorf("DetectType() = %q, want go", got)
	}
}

func TestCompleteFilename(t *testing.T) {
	path := writeFile(t, "README", []byte("just some text"))
	completed := CompleteFilename(path)
	if Ext(completed) == "" {
		t.Errorf("CompleteFilename() = %q, expected an extension to be added", completed)
	}

	named := writeFile(t, "doc.pdf", []byte("%PDF-1.4"))
	if got := CompleteFilename(named); got != named {
		t.Errorf("CompleteFilename() changed a named file: %q", got)
	}
}

func TestExt(t *testing.T) {
	tests := []struct{ name, want string }{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"/tmp/x/notes.txt", "txt"},
	}
	for _, tt := range tests {
		if got := Ext(tt.name); got != tt.want {
			t.Errorf("Ext(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
