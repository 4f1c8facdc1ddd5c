package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spherical/docqa/internal/answer"
	"github.com/spherical/docqa/internal/observability"
	"github.com/spherical/docqa/internal/workflow"
)

// AskHandler answers questions over pre-extracted document text.
type AskHandler struct {
	logger   *observability.Logger
	pipeline Pipeline
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(logger *observability.Logger, pipeline Pipeline) *AskHandler {
	return &AskHandler{
		logger:   logger.WithComponent("ask"),
		pipeline: pipeline,
	}
}

// DocumentDTO carries text previously returned by /api/upload.
type DocumentDTO struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

// AskRequestDTO is the body of POST /api/chat. FileInfo is the older name
// for Document and is used when Document is absent.
type AskRequestDTO struct {
	Question string       `json:"question"`
	Document *DocumentDTO `json:"document,omitempty"`
	FileInfo *DocumentDTO `json:"file_info,omitempty"`
}

// AskResponseDTO is the success body of POST /api/chat.
type AskResponseDTO struct {
	Status string `json:"status"`
	Answer string `json:"answer"`
	RunID  string `json:"run_id,omitempty"`
}

// Ask handles POST /api/chat and POST /api/ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	var req AskRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err.Error())
		return
	}

	doc := req.Document
	if doc == nil {
		doc = req.FileInfo
	}
	if doc == nil {
		doc = &DocumentDTO{}
	}
	name := doc.Name
	if name == "" {
		name = doc.Filename
	}

	log.Debug().
		Int("question_chars", len([]rune(req.Question))).
		Int("content_chars", len([]rune(doc.Content))).
		Str("document", name).
		Msg("Answering question")

	res := h.pipeline.Run(ctx, workflow.Input{
		Question:     req.Question,
		Text:         doc.Content,
		DocumentName: name,
		DocumentType: answer.DocumentFormatFromType(doc.Type, name),
	})
	if !res.OK() {
		writeDomainError(w, res.Err)
		return
	}

	writeJSON(w, http.StatusOK, AskResponseDTO{
		Status: "success",
		Answer: res.Answer,
		RunID:  res.RunID,
	})
}
