package pages

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

// Extractor produces ordered per-page plain text from raw document bytes.
// PDFs yield one string per page, spreadsheets one per sheet, and plain text
// falls back to blank-line runs as pseudo-page boundaries.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Pages(_ context.Context, filename string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfPages(data)
	case ".xlsx", ".xlsm":
		return sheetPages(data)
	default:
		return textPages(filename, data)
	}
}

func pdfPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page is not fatal; later stages skip
			// empty pages.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func sheetPages(data []byte) ([]string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer book.Close()

	var pages []string
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		var b strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

var pseudoPageSplit = regexp.MustCompile(`\n[ \t]*\n+`)

func textPages(filename string, data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported binary format: %s", filename))
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts := pseudoPageSplit.Split(text, -1)
	pages := make([]string, 0, len(parts))
	for _, part := range parts {
		pages = append(pages, strings.TrimSpace(part))
	}
	return pages, nil
}
