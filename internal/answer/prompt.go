package answer

import (
	"fmt"
	"strings"

	"github.com/spherical/docqa/internal/domain"
)

const systemTemplate = `You are a document analysis assistant specialised in answering questions about %ss.
Answer using the supplied document content exactly as it appears. Rules:
1. Use ONLY information explicitly contained in the document content.
2. If the answer is not in the document, say so politely, then point to related information the document does contain or suggest how to rephrase the question.
3. Be precise and quote the text directly where possible.
4. Give numerical values exactly as they appear in the document.
5. When asked about a person or topic present in the document, list every available detail.
6. Do not make assumptions or add information that is not in the document.
7. Never stop at "I cannot find any information"; always offer the most relevant information that IS available.
8. Convey tables and figures clearly and accurately.
9. Assume the reader has not seen the document and give complete answers.`

const userTemplate = "Document Content:\n\n%s\n\nQuestion: %s\n\nPlease provide a precise answer based only on the document content above."

// BuildPrompt assembles the model input for question over doc. It is a pure
// function: equal inputs give byte-identical prompts.
func BuildPrompt(question string, doc domain.ExtractedDocument) domain.Prompt {
	return domain.Prompt{
		System: fmt.Sprintf(systemTemplate, describe(doc)),
		User:   fmt.Sprintf(userTemplate, doc.Text, question),
	}
}

// describe names the kind of document for the system instruction.
func describe(doc domain.ExtractedDocument) string {
	if doc.SourceFormat != "" {
		return doc.SourceFormat.Description()
	}
	if f, ok := domain.ResolveFormat("", doc.OriginalName); ok {
		return f.Description()
	}
	return "document"
}

// DocumentFormatFromType maps the loose type label a client sends with
// pre-extracted text ("application/pdf", "excel", "word-modern") to a format.
// Unknown labels fall back to the document name's extension.
func DocumentFormatFromType(docType, name string) domain.DocumentFormat {
	if f, ok := domain.ResolveFormat(docType, name); ok {
		return f
	}
	t := strings.ToLower(docType)
	switch {
	case domain.DocumentFormat(t).Description() != "document":
		return domain.DocumentFormat(t)
	case strings.Contains(t, "excel"), strings.Contains(t, "spreadsheet"):
		return domain.FormatExcelModern
	case strings.Contains(t, "word"):
		return domain.FormatWordModern
	case strings.Contains(t, "powerpoint"), strings.Contains(t, "presentation"):
		return domain.FormatPowerPointModern
	case strings.Contains(t, "pdf"):
		return domain.FormatPDF
	case strings.Contains(t, "text"):
		return domain.FormatPlainText
	}
	return ""
}

var rawContentIntents = map[string]bool{
	"raw content":     true,
	"show content":    true,
	"extract content": true,
	"simply return the raw content of this document without any analysis or summary.": true,
}

// IsRawContentRequest reports whether question asks for the document text
// itself rather than an answer about it.
func IsRawContentRequest(question string) bool {
	return rawContentIntents[strings.ToLower(strings.TrimSpace(question))]
}
