package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sharondevs/echo-chat/internal/service/docs"
)

func newTestRouter(docsSvc *docs.Service) http.Handler {
	r := chi.NewRouter()
	New(docsSvc).RegisterRoutes(r)
	return r
}

func TestGetSessionReturnsRecord(t *testing.T) {
	docsSvc := docs.NewService()
	record, err := docsSvc.CreateSession(context.Background(), "", []docs.File{{Name: "a.pdf", Size: 10}})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	router := newTestRouter(docsSvc)

	req := httptest.NewRequest(http.MethodGet, "/session/"+record.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Files     []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != record.ID || len(resp.Files) != 1 || resp.Files[0].Name != "a.pdf" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(docs.NewService())

	req := httptest.NewRequest(http.MethodGet, "/session/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteSessionRemovesIt(t *testing.T) {
	docsSvc := docs.NewService()
	record, err := docsSvc.CreateSession(context.Background(), "", []docs.File{{Name: "a.pdf"}})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	router := newTestRouter(docsSvc)

	req := httptest.NewRequest(http.MethodDelete, "/session/"+record.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := docsSvc.GetSession(context.Background(), record.ID); err == nil {
		t.Fatal("session must be gone after delete")
	}
}

func TestDeleteUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(docs.NewService())

	req := httptest.NewRequest(http.MethodDelete, "/session/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
