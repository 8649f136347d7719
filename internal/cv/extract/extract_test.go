package extract_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ehstaff/ehstaff-backend/internal/cv/extract"
	apperrors "github.com/ehstaff/ehstaff-backend/pkg/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mime    string
		size    int64
		max     int64
		wantErr bool
		detail  string
	}{
		{"supported pdf", extract.MimePDF, 1024, 0, false, ""},
		{"supported docx", extract.MimeDOCX, 1024, 0, false, ""},
		{"supported xlsx", extract.MimeXLSX, 1024, 0, false, ""},
		{"unsupported png", "image/png", 1024, 0, true, "unsupported file type"},
		{"empty file", extract.MimePDF, 0, 0, true, "file is empty"},
		{"oversized file", extract.MimePDF, 11 * 1024 * 1024, 0, true, "exceeds limit"},
		{"custom limit respected", extract.MimePDF, 2048, 1024, true, "exceeds limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := extract.Validate(tt.mime, tt.size, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var appErr *apperrors.AppError
			if !apperrors.As(err, &appErr) {
				t.Fatalf("error is not an AppError: %v", err)
			}
			if !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("error does not wrap ErrValidation: %v", err)
			}
			if !strings.Contains(appErr.Details["file"], tt.detail) {
				t.Errorf("detail = %q, want substring %q", appErr.Details["file"], tt.detail)
			}
		})
	}
}

func buildDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	var body strings.Builder
	body.WriteString(`<w:document><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTextFromDocx(t *testing.T) {
	data := buildDocx(t, []string{"John Smith", "Head Chef"})

	text, err := extract.Text(data, extract.MimeDOCX)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if !strings.Contains(text, "John Smith") || !strings.Contains(text, "Head Chef") {
		t.Errorf("Text() = %q, missing expected content", text)
	}
	// Paragraph boundaries become newlines
	if !strings.Contains(text, "John Smith\n") {
		t.Errorf("Text() = %q, want newline after first paragraph", text)
	}
}

func TestTextFromDocxCorrupt(t *testing.T) {
	_, err := extract.Text([]byte("not a zip archive"), extract.MimeDOCX)
	if !apperrors.Is(err, apperrors.ErrExtractionFailed) {
		t.Errorf("error = %v, want ErrExtractionFailed", err)
	}
}

func TestTextFromSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", "Name"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "B1", "Role"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "A2", "John"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "B2", "Chef"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	text, err := extract.Text(buf.Bytes(), extract.MimeXLSX)
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	// Cells joined by spaces, rows by newlines
	if !strings.Contains(text, "Name Role") {
		t.Errorf("Text() = %q, want cells joined by a space", text)
	}
	if !strings.Contains(text, "John Chef") {
		t.Errorf("Text() = %q, want second row present", text)
	}
}

func TestTextFromCorruptPDF(t *testing.T) {
	_, err := extract.Text([]byte("%PDF-garbage"), extract.MimePDF)
	if !apperrors.Is(err, apperrors.ErrExtractionFailed) {
		t.Errorf("error = %v, want ErrExtractionFailed", err)
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := extract.NewDiskStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	url, err := store.Put([]byte("document bytes"), "My CV (final).pdf")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
	// Name is sanitized
	if strings.ContainsAny(filepath.Base(url), "() ") {
		t.Errorf("url = %q, want sanitized file name", url)
	}

	data, err := store.Get(url)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "document bytes" {
		t.Errorf("Get() = %q, want stored bytes", data)
	}

	if err := store.Delete(url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(url); err == nil {
		t.Error("Get() after Delete() succeeded, want error")
	}
	// Deleting again is not an error
	if err := store.Delete(url); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("uploads dir has %d entries after delete, want 0", len(entries))
	}
}
