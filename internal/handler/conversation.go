package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/attendai/attendai/internal/chat"
	"github.com/attendai/attendai/internal/models"
	"github.com/attendai/attendai/internal/report"
	"github.com/attendai/attendai/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ConversationHandler exposes the chat adapter over HTTP
type ConversationHandler struct {
	adapter *chat.Adapter
}

func NewConversationHandler(adapter *chat.Adapter) *ConversationHandler {
	return &ConversationHandler{adapter: adapter}
}

// Create handles POST /api/v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	log.Debug().Str("conversation_id", id).Msg("conversation started")
	models.WriteJSON(w, http.StatusCreated, models.ConversationResponse{
		ConversationID: id,
		Messages:       []chat.Message{h.adapter.Welcome()},
	})
}

// Message handles POST /api/v1/conversations/{id}/messages
func (h *ConversationHandler) Message(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var req models.MessageRequest
	body := http.MaxBytesReader(w, r.Body, models.MaxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Normalize()

	models.WriteJSON(w, http.StatusOK, models.ConversationResponse{
		ConversationID: id,
		Messages:       h.adapter.HandleMessage(r.Context(), id, req.Content),
	})
}

// Action handles POST /api/v1/conversations/{id}/actions/{action}
func (h *ConversationHandler) Action(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	models.WriteJSON(w, http.StatusOK, models.ConversationResponse{
		ConversationID: id,
		Messages:       h.adapter.HandleAction(r.Context(), id, chi.URLParam(r, "action")),
	})
}

// Report handles GET /api/v1/conversations/{id}/report.pdf
func (h *ConversationHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	pdf, err := h.adapter.PDF(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		models.WriteError(w, http.StatusNotFound, chat.MsgNoReport)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("conversation_id", id).Msg("pdf export failed")
		models.WriteError(w, http.StatusInternalServerError, "Error generating PDF: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", report.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// Delete handles DELETE /api/v1/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	if err := h.adapter.Reset(r.Context(), id); err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func conversationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid conversation id")
		return "", false
	}
	return id, true
}
