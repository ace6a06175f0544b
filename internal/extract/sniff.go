package extract

import (
	"archive/zip"
	"net/http"
	"os"
	"strings"
)

// mimeToExt maps sniffed MIME types to extensions.
var mimeToExt = map[string]string{
	"application/pdf": "pdf",
	"text/plain":      "txt",
	"text/html":       "html",
	"text/xml":        "xml",
	"application/zip": "zip",
}

// DetectType determines a file's extension by content sniffing, falling
// back to the name's extension when the content is inconclusive. OOXML
// containers (docx/xlsx/pptx) all sniff as zip, so they are told apart by
// their inner directory layout.
func DetectType(path string) string {
	ext := sniffContent(path)

	switch ext {
	case "zip":
		if ooxml := sniffOOXML(path); ooxml != "" {
			return ooxml
		}
	case "txt", "":
		// Plain text and unknown content defer to the declared extension
		// so source files keep their real type.
		if named := Ext(path); named != "" {
			return named
		}
	}

	if ext != "" {
		return ext
	}
	return Ext(path)
}

// CompleteFilename appends the detected extension when the name has none,
// so the type gate and dispatch see a usable extension.
func CompleteFilename(path string) string {
	if Ext(path) != "" {
		return path
	}
	if detected := DetectType(path); detected != "" {
		return path + "." + detected
	}
	return path
}

func sniffContent(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return ""
	}

	mime := http.DetectContentType(buf[:n])
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}

	if ext, ok := mimeToExt[mime]; ok {
		return ext
	}

	// Generic fallback: take the subtype, stripping vendor prefixes.
	if i := strings.Index(mime, "/"); i >= 0 {
		sub := mime[i+1:]
		sub = strings.TrimPrefix(sub, "x-")
		sub = strings.TrimPrefix(sub, "vnd.")
		if sub != "octet-stream" {
			return sub
		}
	}
	return ""
}

// sniffOOXML inspects a zip container for Office Open XML markers.
func sniffOOXML(path string) string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ""
	}
	defer r.Close()

	for _, f := range r.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return "docx"
		case strings.HasPrefix(f.Name, "xl/"):
			return "xlsx"
		case strings.HasPrefix(f.Name, "ppt/"):
			return "pptx"
		}
	}
	return ""
}
