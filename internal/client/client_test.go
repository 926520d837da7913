package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sharondevs/echo-chat/internal/model/chat"
)

func TestUploadDocumentsSendsMultipartFields(t *testing.T) {
	var gotNames []string
	var gotSession string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		for _, part := range r.MultipartForm.File["files"] {
			gotNames = append(gotNames, part.Filename)
		}
		gotSession = r.FormValue("session_id")
		fmt.Fprint(w, `{"message":"ok","file_count":2,"session_id":"s-123"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	docs := []chat.Document{
		{Name: "a.pdf", Content: strings.NewReader("pdf bytes")},
		{Name: "b.txt", Content: strings.NewReader("text")},
	}

	result, err := c.UploadDocuments(context.Background(), docs, "old-session")
	if err != nil {
		t.Fatalf("UploadDocuments err: %v", err)
	}

	if result.SessionID != "s-123" || result.FileCount != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(gotNames) != 2 || gotNames[0] != "a.pdf" || gotNames[1] != "b.txt" {
		t.Fatalf("unexpected file names: %v", gotNames)
	}
	if gotSession != "old-session" {
		t.Fatalf("unexpected session field: %q", gotSession)
	}
}

func TestUploadDocumentsNon2xxIsUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.UploadDocuments(context.Background(), []chat.Document{{Name: "a.pdf"}}, "")

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %T: %v", err, err)
	}
	if uploadErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", uploadErr.Status)
	}
}

func TestUploadDocumentsNetworkFailureIsUploadError(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	_, err := c.UploadDocuments(context.Background(), []chat.Document{{Name: "a.pdf"}}, "")

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %T: %v", err, err)
	}
}

func TestStreamChatNon2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.StreamChat(context.Background(), "hi", chat.ModeResume, "")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", transportErr.Status)
	}
}

func TestStreamChatSendsNullSessionInResumeMode(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		fmt.Fprint(w, "data: {\"text\":\"hi\"}\n")
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	stream, err := c.StreamChat(context.Background(), "who are you", chat.ModeResume, "")
	if err != nil {
		t.Fatalf("StreamChat err: %v", err)
	}
	defer stream.Close()

	if !strings.Contains(gotBody, `"session_id":null`) {
		t.Fatalf("expected null session_id, got body %s", gotBody)
	}
	if !strings.Contains(gotBody, `"mode":"resume"`) {
		t.Fatalf("expected resume mode, got body %s", gotBody)
	}

	event, err := stream.Next()
	if err != nil {
		t.Fatalf("Next err: %v", err)
	}
	if event.Text != "hi" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestDeleteSessionBestEffort(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.DeleteSession(context.Background(), "s-9"); err != nil {
		t.Fatalf("DeleteSession err: %v", err)
	}
	if gotPath != "/session/s-9" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestDeleteSessionReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.DeleteSession(context.Background(), "gone"); err == nil {
		t.Fatal("expected error for 404 delete")
	}
}

func TestHealthProbesRoot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health err: %v", err)
	}
}
