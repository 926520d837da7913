// Package stream implements echod's streaming chat endpoint: one POST
// produces a long-lived response of `data: <json>` event lines.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sharondevs/echo-chat/internal/corpus"
	"github.com/sharondevs/echo-chat/internal/model/chat"
	"github.com/sharondevs/echo-chat/internal/service/ai"
	"github.com/sharondevs/echo-chat/internal/service/docs"
	"github.com/sharondevs/echo-chat/pkg/utils"
)

// cannedChunkDelay paces the fallback responder so clients exercise real
// incremental consumption.
const cannedChunkDelay = 15 * time.Millisecond

// Handler answers chat questions over SSE.
type Handler struct {
	aiSvc   *ai.Service // nil means canned responses
	docsSvc *docs.Service
	corpus  corpus.Store
}

// New creates the stream handler. aiSvc may be nil.
func New(aiSvc *ai.Service, docsSvc *docs.Service, store corpus.Store) *Handler {
	return &Handler{aiSvc: aiSvc, docsSvc: docsSvc, corpus: store}
}

// RegisterRoutes registers the streaming chat endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stream-chat", h.handleStreamChat)
}

type chatRequest struct {
	Message   string  `json:"message"`
	Mode      string  `json:"mode"`
	SessionID *string `json:"session_id"`
}

func (h *Handler) handleStreamChat(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	mode := chat.Mode(payload.Mode)
	if !mode.Valid() {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode: %q", payload.Mode))
		return
	}

	grounding, sources, sessionID, err := h.resolveGrounding(r.Context(), mode, payload)
	if err != nil {
		if errors.Is(err, docs.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)

	modelUsed := "canned"
	if h.aiSvc != nil {
		modelUsed = "ark"
	}
	utils.SendSSEChunk(w, flusher, chat.StreamEvent{
		Metadata: &chat.StreamMetadata{
			SessionID: sessionID,
			QueryType: string(mode),
			ModelUsed: modelUsed,
		},
	})

	if h.aiSvc != nil {
		h.streamModelAnswer(r.Context(), w, flusher, payload.Message, grounding)
	} else {
		h.streamCannedAnswer(r.Context(), w, flusher, mode, grounding)
	}

	if len(sources) > 0 {
		utils.SendSSEChunk(w, flusher, chat.StreamEvent{Sources: sources})
	}

	log.Printf("[stream] completed answer mode=%s session=%s model=%s", mode, sessionID, modelUsed)
}

// resolveGrounding picks the material the answer cites: reference corpus
// sections in resume mode, the session's uploaded documents otherwise.
func (h *Handler) resolveGrounding(ctx context.Context, mode chat.Mode, payload chatRequest) (grounding string, sources []string, sessionID string, err error) {
	if mode == chat.ModeResume {
		sections := corpus.Search(h.corpus, payload.Message)
		var parts []string
		for _, section := range sections {
			parts = append(parts, fmt.Sprintf("## %s\n%s", section.Title, section.Body))
			sources = append(sources, section.Title)
		}
		return strings.Join(parts, "\n\n"), sources, "", nil
	}

	if payload.SessionID == nil || *payload.SessionID == "" {
		return "", nil, "", fmt.Errorf("session_id is required in documents mode")
	}

	record, err := h.docsSvc.GetSession(ctx, *payload.SessionID)
	if err != nil {
		return "", nil, "", err
	}

	var parts []string
	for _, file := range record.Files {
		sources = append(sources, file.Name)
		if file.Text != "" {
			parts = append(parts, fmt.Sprintf("## %s\n%s", file.Name, file.Text))
		} else {
			parts = append(parts, fmt.Sprintf("## %s\n(binary document, %d bytes)", file.Name, file.Size))
		}
	}
	return strings.Join(parts, "\n\n"), sources, record.ID, nil
}

// streamModelAnswer relays model chunks as text events. Failures after the
// stream opened are reported in-band so partial output survives on the
// client.
func (h *Handler) streamModelAnswer(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, question, grounding string) {
	stream, err := h.aiSvc.StreamAnswer(ctx, question, grounding)
	if err != nil {
		utils.SendSSEChunk(w, flusher, chat.StreamEvent{Err: fmt.Sprintf("answer generation failed: %v", err)})
		return
	}
	defer stream.Close()

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			return
		}
		if recvErr != nil {
			utils.SendSSEChunk(w, flusher, chat.StreamEvent{Err: fmt.Sprintf("answer generation failed: %v", recvErr)})
			return
		}
		if chunk != nil && chunk.Content != "" {
			utils.SendSSEChunk(w, flusher, chat.StreamEvent{Text: chunk.Content})
		}
	}
}

// streamCannedAnswer produces a deterministic word-by-word answer from the
// grounding material when no model is configured.
func (h *Handler) streamCannedAnswer(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, mode chat.Mode, grounding string) {
	var answer string
	if mode == chat.ModeResume {
		answer = "Here is what the reference material says:\n\n" + grounding
	} else {
		answer = "Based on your uploaded documents:\n\n" + grounding
	}

	for _, word := range strings.Split(answer, " ") {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cannedChunkDelay):
		}
		utils.SendSSEChunk(w, flusher, chat.StreamEvent{Text: word + " "})
	}
}
