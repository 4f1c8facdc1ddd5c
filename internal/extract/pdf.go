package extract

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spherical/docqa/internal/domain"
)

var disablePDFConfigDir sync.Once

// PDFStrategy validates a PDF's structure with pdfcpu and reads its text
// layer with MuPDF.
type PDFStrategy struct {
	conf *model.Configuration
}

// NewPDFStrategy creates a PDF strategy using relaxed validation.
func NewPDFStrategy() *PDFStrategy {
	// pdfcpu would otherwise create a config dir under the user's home.
	disablePDFConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFStrategy{conf: conf}
}

// Extract implements domain.Strategy.
func (s *PDFStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return "", domain.ExtractionError("not a PDF file", nil)
	}

	pages, err := api.PageCount(bytes.NewReader(data), s.conf)
	if err != nil {
		return "", domain.ExtractionError("invalid PDF structure", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", domain.ExtractionError("cannot open PDF", err)
	}
	defer doc.Close()

	if n := doc.NumPage(); n < pages {
		pages = n
	}

	texts := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", domain.ExtractionError("PDF extraction cancelled", err)
		}

		raw, err := doc.Text(i)
		if err != nil {
			return "", domain.ExtractionError(fmt.Sprintf("cannot read text of page %d", i+1), err)
		}
		if page := cleanPageText(raw); page != "" {
			texts = append(texts, page)
		}
	}

	// A PDF without a text layer yields "" and is rejected by the validator.
	return strings.Join(texts, "\n\n"), nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanPageText collapses whitespace and re-attaches detached punctuation.
func cleanPageText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.TrimSpace(s)
}
