package handlers

import (
	"net/http"

	"github.com/spherical/docqa/internal/domain"
)

// FormatsResponseDTO lists what /api/upload accepts.
type FormatsResponseDTO struct {
	Formats            []domain.FormatInfo `json:"formats"`
	MaxUploadBytes     int64               `json:"max_upload_bytes"`
	ConverterAvailable bool                `json:"converter_available"`
}

// Formats returns a handler for GET /api/formats.
func Formats(maxBytes int64, conv domain.Converter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, FormatsResponseDTO{
			Formats:            domain.SupportedFormats,
			MaxUploadBytes:     maxBytes,
			ConverterAvailable: conv != nil && conv.Available() == nil,
		})
	}
}
