package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// MediaTypeFor maps a stored filename to its upload media type. Unknown
// extensions return application/octet-stream; upload validation should have
// rejected those already.
func MediaTypeFor(path string) string {
	if mt, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// fileText is the default TextExtractor: pdfcpu for PDFs, Tesseract for
// image uploads.
type fileText struct{}

func (fileText) Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfText(path)
	case ".jpg", ".jpeg", ".png":
		return imageText(path)
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}
