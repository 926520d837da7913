package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sharondevs/echo-chat/internal/corpus"
	"github.com/sharondevs/echo-chat/internal/handler/sessions"
	"github.com/sharondevs/echo-chat/internal/handler/stream"
	"github.com/sharondevs/echo-chat/internal/handler/upload"
	middlewarePkg "github.com/sharondevs/echo-chat/internal/middleware"
	"github.com/sharondevs/echo-chat/internal/service/ai"
	"github.com/sharondevs/echo-chat/internal/service/docs"
	"github.com/sharondevs/echo-chat/pkg/utils"
)

// NewRouter wires echod's HTTP routes to its services. aiSvc may be nil, in
// which case the stream handler serves canned answers.
func NewRouter(aiSvc *ai.Service, docsSvc *docs.Service, store corpus.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	uploadHandler := upload.New(docsSvc)
	sessionsHandler := sessions.New(docsSvc)
	streamHandler := stream.New(aiSvc, docsSvc, store)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "echo-chat",
		})
	})

	uploadHandler.RegisterRoutes(r)
	sessionsHandler.RegisterRoutes(r)
	streamHandler.RegisterRoutes(r)

	return r
}
