package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
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

func multipartBody(t *testing.T, sessionID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if sessionID != "" {
		if err := writer.WriteField("session_id", sessionID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadStoresFilesAndReturnsSession(t *testing.T) {
	docsSvc := docs.NewService()
	router := newTestRouter(docsSvc)

	body, contentType := multipartBody(t, "", map[string]string{
		"notes.txt":  "hello from notes",
		"report.pdf": "%PDF-1.4 fake",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message   string `json:"message"`
		FileCount int    `json:"file_count"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FileCount != 2 || resp.SessionID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	record, err := docsSvc.GetSession(req.Context(), resp.SessionID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(record.Files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(record.Files))
	}
	for _, file := range record.Files {
		if file.Name == "notes.txt" && file.Text != "hello from notes" {
			t.Fatalf("text extraction failed: %+v", file)
		}
		if file.Name == "report.pdf" && file.Text != "" {
			t.Fatalf("binary files must not claim extracted text: %+v", file)
		}
	}
}

func TestUploadAppendsToExistingSession(t *testing.T) {
	docsSvc := docs.NewService()
	router := newTestRouter(docsSvc)

	existing, err := docsSvc.CreateSession(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		"", []docs.File{{Name: "first.pdf"}})
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	body, contentType := multipartBody(t, existing.ID, map[string]string{"second.txt": "x"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	record, err := docsSvc.GetSession(req.Context(), existing.ID)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(record.Files) != 2 {
		t.Fatalf("expected appended files, got %d", len(record.Files))
	}
}

func TestUploadRejectsUnsupportedFileType(t *testing.T) {
	router := newTestRouter(docs.NewService())

	body, contentType := multipartBody(t, "", map[string]string{"tool.exe": "MZ"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadRejectsEmptyRequest(t *testing.T) {
	router := newTestRouter(docs.NewService())

	body, contentType := multipartBody(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
