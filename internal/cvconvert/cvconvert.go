// Package cvconvert turns uploaded CVs into the PDF the backend accepts.
package cvconvert

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxSize bounds accepted uploads.
const MaxSize = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("cvconvert: only .pdf and .docx files are accepted")
	ErrTooLarge          = errors.New("cvconvert: file too large")
	ErrNotPDF            = errors.New("cvconvert: file is not a PDF")
)

var pdfMagic = []byte("%PDF-")

// PrepareUpload returns the filename and bytes to send to the backend.
// PDFs pass through; DOCX documents are re-rendered as a text PDF named
// after the original.
func PrepareUpload(filename string, data []byte) (string, []byte, error) {
	if len(data) > MaxSize {
		return "", nil, ErrTooLarge
	}

	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return "", nil, ErrNotPDF
		}
		return base, data, nil
	case ".docx":
		doc, err := readDocx(data)
		if err != nil {
			return "", nil, err
		}
		out, err := renderPDF(strings.TrimSuffix(base, filepath.Ext(base)), doc)
		if err != nil {
			return "", nil, err
		}
		return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf", out, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
