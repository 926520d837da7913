// Package sessions implements echod's session introspection and teardown
// endpoints.
package sessions

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharondevs/echo-chat/internal/service/docs"
	"github.com/sharondevs/echo-chat/pkg/utils"
)

// Handler serves GET and DELETE for /session/{sessionID}.
type Handler struct {
	docsSvc *docs.Service
}

// New creates the sessions handler.
func New(docsSvc *docs.Service) *Handler {
	return &Handler{docsSvc: docsSvc}
}

// RegisterRoutes registers the session endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/{sessionID}", h.handleGet)
	r.Delete("/session/{sessionID}", h.handleDelete)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	record, err := h.docsSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, docs.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.docsSvc.DeleteSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, docs.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[sessions] deleted session=%s", sessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}
