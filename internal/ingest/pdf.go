package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoExtractableText = errors.New("pdf contains no extractable text")

// ExtractPDF pulls plain text from the PDF at path. Pages are separated by
// blank lines. Pages whose text cannot be decoded are skipped rather than
// failing the whole document.
func ExtractPDF(path string) (text string, pageCount int, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	pageCount = reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	text = sb.String()
	if strings.TrimSpace(text) == "" {
		return "", pageCount, ErrNoExtractableText
	}

	return text, pageCount, nil
}
