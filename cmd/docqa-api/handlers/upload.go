package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 1 << 20

// DefaultPreviewChars is the length of content_preview in upload responses.
const DefaultPreviewChars = 500

// UploadHandler handles document uploads.
type UploadHandler struct {
	logger       *observability.Logger
	pipeline     Pipeline
	maxBytes     int64
	previewChars int
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(logger *observability.Logger, pipeline Pipeline, maxBytes int64, previewChars int) *UploadHandler {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &UploadHandler{
		logger:       logger.WithComponent("upload"),
		pipeline:     pipeline,
		maxBytes:     maxBytes,
		previewChars: previewChars,
	}
}

// UploadResponseDTO is the success body of POST /api/upload.
type UploadResponseDTO struct {
	Status         string                `json:"status"`
	Message        string                `json:"message"`
	Filename       string                `json:"filename"`
	Format         domain.DocumentFormat `json:"format"`
	ContentPreview string                `json:"content_preview"`
	Content        string                `json:"content"`
}

// Upload handles POST /api/upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDomainError(w, domain.PayloadTooLargeError(max(r.ContentLength, tooLarge.Limit), h.maxBytes))
			return
		}
		writeBadRequest(w, "file is required", "send the document as multipart field \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDomainError(w, domain.PayloadTooLargeError(header.Size, h.maxBytes))
			return
		}
		writeBadRequest(w, "failed to read upload", err.Error())
		return
	}

	// An unresolved format is left empty so the registry reports it after
	// the size check.
	format, _ := domain.ResolveFormat(header.Header.Get("Content-Type"), header.Filename)

	log.Info().
		Str("filename", header.Filename).
		Str("format", string(format)).
		Int64("bytes", int64(len(data))).
		Msg("Processing upload")

	doc, err := h.pipeline.Ingest(ctx, domain.RawUpload{
		Data:         data,
		Format:       format,
		Filename:     header.Filename,
		DeclaredSize: header.Size,
	})
	if err != nil {
		log.Warn().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponseDTO{
		Status:         "success",
		Message:        "File uploaded and processed successfully",
		Filename:       header.Filename,
		Format:         doc.SourceFormat,
		ContentPreview: preview(doc.Text, h.previewChars),
		Content:        doc.Text,
	})
}

// preview returns the first n runes of s, marked when truncated.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
