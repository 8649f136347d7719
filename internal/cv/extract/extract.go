// Package extract turns uploaded CV documents into raw text.
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// Supported MIME types
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS  = "application/vnd.ms-excel"
)

// DefaultMaxFileSize is the upload size cap applied when none is configured.
const DefaultMaxFileSize = 10 * 1024 * 1024

var supportedTypes = map[string]bool{
	MimePDF:  true,
	MimeDOCX: true,
	MimeDOC:  true,
	MimeXLSX: true,
	MimeXLS:  true,
}

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// Validate checks an upload before any decoding is attempted. It returns a
// validation error identifying the failed check: unsupported type, empty
// file, or oversized file.
func Validate(mimeType string, size int64, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if !supportedTypes[mimeType] {
		return apperrors.Validation(map[string]string{
			"file": fmt.Sprintf("unsupported file type: %s", mimeType),
		})
	}
	if size == 0 {
		return apperrors.Validation(map[string]string{"file": "file is empty"})
	}
	if size > maxSize {
		return apperrors.Validation(map[string]string{
			"file": fmt.Sprintf("file size exceeds limit: %.2fMB", float64(size)/1024/1024),
		})
	}
	return nil
}

// Text extracts raw text from document bytes using the strategy for the
// declared MIME type. Callers are expected to have run Validate first; an
// undeclared type still fails cleanly here.
func Text(data []byte, mimeType string) (string, error) {
	switch mimeType {
	case MimePDF:
		return pdfText(data)
	case MimeDOCX, MimeDOC:
		return docxText(data)
	case MimeXLSX, MimeXLS:
		return spreadsheetText(data)
	default:
		return "", apperrors.ExtractionFailed(fmt.Errorf("unsupported file type: %s", mimeType))
	}
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.ExtractionFailed(fmt.Errorf("pdf: %w", err))
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", apperrors.ExtractionFailed(fmt.Errorf("pdf: %w", err))
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", apperrors.ExtractionFailed(fmt.Errorf("pdf: %w", err))
	}
	return buf.String(), nil
}

// docxText pulls word/document.xml out of the OOXML package and strips the
// markup, keeping paragraph boundaries as newlines.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.ExtractionFailed(fmt.Errorf("docx: %w", err))
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", apperrors.ExtractionFailed(fmt.Errorf("docx: %w", err))
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", apperrors.ExtractionFailed(fmt.Errorf("docx: %w", err))
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", apperrors.ExtractionFailed(fmt.Errorf("docx: no document.xml found"))
	}

	text := string(docXML)
	text = strings.ReplaceAll(text, "</w:p>", "\n")
	text = strings.ReplaceAll(text, "<w:tab/>", "\t")
	text = xmlTags.ReplaceAllString(text, "")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

// spreadsheetText flattens all sheets row-major: cells joined by single
// spaces, rows joined by newlines.
func spreadsheetText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", apperrors.ExtractionFailed(fmt.Errorf("spreadsheet: %w", err))
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", apperrors.ExtractionFailed(fmt.Errorf("spreadsheet: %w", err))
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, " "))
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}
