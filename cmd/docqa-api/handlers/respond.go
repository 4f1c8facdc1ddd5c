// Package handlers provides HTTP handlers for the docqa API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/workflow"
)

// Pipeline is the part of the workflow graph the handlers drive.
type Pipeline interface {
	Ingest(ctx context.Context, upload domain.RawUpload) (domain.ExtractedDocument, error)
	Run(ctx context.Context, in workflow.Input) workflow.Result
}

// ErrorDTO is the failure body shared by every endpoint.
type ErrorDTO struct {
	Status  string           `json:"status"`
	Kind    domain.ErrorKind `json:"kind,omitempty"`
	Message string           `json:"message"`
	Detail  string           `json:"detail,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case domain.KindPayloadTooLarge, domain.KindContextTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindEmptyContent, domain.KindContentTooShort, domain.KindInvalidQuestion:
		return http.StatusBadRequest
	case domain.KindExtractionFailed:
		return http.StatusUnprocessableEntity
	case domain.KindConverterUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindModelUnavailable, domain.KindModelResponseInvalid:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Remediation returns what the caller can do about a failure of kind.
func Remediation(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindUnsupportedFormat:
		return "Upload a PDF, Word, Excel, PowerPoint or plain text file."
	case domain.KindPayloadTooLarge:
		return "Upload a smaller file."
	case domain.KindContextTooLarge:
		return "The document is too long to answer over in one request; try a shorter document."
	case domain.KindEmptyContent:
		return "The document contains no extractable text. Please try uploading the file again."
	case domain.KindContentTooShort:
		return "The document content is too short to process. Please upload a valid document."
	case domain.KindInvalidQuestion:
		return "Question is required."
	case domain.KindExtractionFailed:
		return "The file may be password-protected, corrupted, or mislabelled."
	case domain.KindConverterUnavailable:
		return "Legacy Office formats need LibreOffice; ask the administrator to install it (soffice must be on PATH)."
	case domain.KindModelUnavailable:
		return "The language model could not be reached. Please retry shortly."
	case domain.KindModelResponseInvalid:
		return "The language model returned an unusable answer. Please retry."
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError writes err with the status its kind maps to. Errors that
// carry no kind are internal.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Status: "error", Message: "internal error"})
		return
	}
	writeJSON(w, StatusFor(de.Kind), ErrorDTO{
		Status:  "error",
		Kind:    de.Kind,
		Message: de.Message,
		Detail:  Remediation(de.Kind),
	})
}

func writeBadRequest(w http.ResponseWriter, message, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorDTO{Status: "error", Message: message, Detail: detail})
}
