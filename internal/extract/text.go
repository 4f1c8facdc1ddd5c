package extract

import (
	"bytes"
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/spherical/docqa/internal/domain"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// TextStrategy reads plain-text uploads.
type TextStrategy struct{}

// NewTextStrategy creates a plain-text strategy.
func NewTextStrategy() *TextStrategy {
	return &TextStrategy{}
}

// Extract returns UTF-8 text. A UTF-8 BOM is stripped and UTF-16 with a BOM
// is transcoded; any other byte sequence must already be valid UTF-8.
func (s *TextStrategy) Extract(_ context.Context, data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", domain.ExtractionError("cannot decode UTF-16 text", err)
		}
		data = out
	}

	if !utf8.Valid(data) {
		return "", domain.ExtractionError("text file is not valid UTF-8", nil)
	}
	return string(data), nil
}
