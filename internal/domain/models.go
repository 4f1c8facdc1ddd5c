package domain

import (
	"mime"
	"path/filepath"
	"strings"
)

// DocumentFormat identifies how an upload's bytes are encoded.
type DocumentFormat string

const (
	FormatPDF              DocumentFormat = "pdf"
	FormatWordLegacy       DocumentFormat = "word-legacy"
	FormatWordModern       DocumentFormat = "word-modern"
	FormatExcelLegacy      DocumentFormat = "excel-legacy"
	FormatExcelModern      DocumentFormat = "excel-modern"
	FormatPowerPointLegacy DocumentFormat = "powerpoint-legacy"
	FormatPowerPointModern DocumentFormat = "powerpoint-modern"
	FormatPlainText        DocumentFormat = "plain-text"
)

// FormatInfo describes the declared identifiers of a supported format.
type FormatInfo struct {
	Format      DocumentFormat `json:"format"`
	MediaType   string         `json:"media_type"`
	Extension   string         `json:"extension"`
	Description string         `json:"description"`
	Legacy      bool           `json:"legacy"`
}

// SupportedFormats lists every format in the supported set.
var SupportedFormats = []FormatInfo{
	{FormatPDF, "application/pdf", ".pdf", "PDF document", false},
	{FormatWordLegacy, "application/msword", ".doc", "Word document", true},
	{FormatWordModern, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx", "Word document", false},
	{FormatExcelLegacy, "application/vnd.ms-excel", ".xls", "Excel spreadsheet", true},
	{FormatExcelModern, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx", "Excel spreadsheet", false},
	{FormatPowerPointLegacy, "application/vnd.ms-powerpoint", ".ppt", "PowerPoint presentation", true},
	{FormatPowerPointModern, "application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx", "PowerPoint presentation", false},
	{FormatPlainText, "text/plain", ".txt", "text file", false},
}

// genericMediaTypes carry no format information; the extension decides.
var genericMediaTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
	"application/zip":          true,
}

// Info returns the descriptor for f.
func (f DocumentFormat) Info() (FormatInfo, bool) {
	for _, info := range SupportedFormats {
		if info.Format == f {
			return info, true
		}
	}
	return FormatInfo{}, false
}

// Description returns a human label such as "Excel spreadsheet".
func (f DocumentFormat) Description() string {
	if info, ok := f.Info(); ok {
		return info.Description
	}
	return "document"
}

// ResolveFormat derives the format of an upload from its declared media
// type, falling back to the filename extension when the media type is
// missing or generic.
func ResolveFormat(mediaType, filename string) (DocumentFormat, bool) {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}

	if !genericMediaTypes[mt] {
		for _, info := range SupportedFormats {
			if info.MediaType == mt {
				return info.Format, true
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	for _, info := range SupportedFormats {
		if info.Extension == ext {
			return info.Format, true
		}
	}
	return "", false
}

// RawUpload is the unparsed upload handed to the extractor registry.
type RawUpload struct {
	Data         []byte
	Format       DocumentFormat
	Filename     string
	DeclaredSize int64
}

// Size returns the larger of the declared and actual byte counts.
func (u RawUpload) Size() int64 {
	if n := int64(len(u.Data)); n > u.DeclaredSize {
		return n
	}
	return u.DeclaredSize
}

// ExtractedDocument is validated plain text ready for question answering.
type ExtractedDocument struct {
	Text         string         `json:"text"`
	SourceFormat DocumentFormat `json:"source_format"`
	OriginalName string         `json:"original_name"`
}

// QARequest is a self-contained question about a document's text.
type QARequest struct {
	Question     string `json:"question"`
	DocumentText string `json:"document_text"`
	DocumentName string `json:"document_name"`
	DocumentType string `json:"document_type"`
}

// QAResult is either an answer or a typed failure, never both.
type QAResult struct {
	Answer  string    `json:"answer,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OK reports whether the result is the success variant.
func (r QAResult) OK() bool {
	return r.Kind == ""
}

// Prompt is the fully assembled input to a language model.
type Prompt struct {
	System string
	User   string
}

// Len returns the prompt size in characters.
func (p Prompt) Len() int {
	return len([]rune(p.System)) + len([]rune(p.User))
}
