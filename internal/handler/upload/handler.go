// Package upload implements echod's multipart document intake.
package upload

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sharondevs/echo-chat/internal/model/chat"
	"github.com/sharondevs/echo-chat/internal/service/docs"
	"github.com/sharondevs/echo-chat/pkg/utils"
)

// maxUploadBytes caps one multipart request in memory.
const maxUploadBytes = 32 << 20

// Handler accepts document uploads and binds them to sessions.
type Handler struct {
	docsSvc *docs.Service
}

// New creates the upload handler.
func New(docsSvc *docs.Service) *Handler {
	return &Handler{docsSvc: docsSvc}
}

// RegisterRoutes registers the upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	var files []docs.File
	for _, part := range parts {
		doc := chat.Document{Name: part.Filename, Size: part.Size}
		if !doc.Accepted() {
			utils.RespondError(w, http.StatusBadRequest,
				fmt.Sprintf("unsupported file type: %s", part.Filename))
			return
		}

		file := docs.File{Name: part.Filename, Size: part.Size}
		// Plain text is readable as-is; binary formats are kept for
		// citation by name only.
		if strings.EqualFold(filepath.Ext(part.Filename), ".txt") {
			opened, err := part.Open()
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest,
					fmt.Sprintf("unreadable file: %s", part.Filename))
				return
			}
			content, err := io.ReadAll(opened)
			opened.Close()
			if err != nil {
				utils.RespondError(w, http.StatusBadRequest,
					fmt.Sprintf("unreadable file: %s", part.Filename))
				return
			}
			file.Text = string(content)
		}
		files = append(files, file)
	}

	sessionID := r.FormValue("session_id")
	record, err := h.docsSvc.CreateSession(r.Context(), sessionID, files)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[upload] session=%s stored %d files", record.ID, len(files))
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":    fmt.Sprintf("successfully processed %d files", len(files)),
		"file_count": len(files),
		"session_id": record.ID,
	})
}
