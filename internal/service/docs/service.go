// Package docs is echod's in-memory registry of document sessions: which
// uploaded files belong to which session token, plus the extracted text the
// stream handler answers from.
package docs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// File is one stored upload. Text is only populated for plain-text files;
// binary formats keep name and size for citation purposes.
type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Text string `json:"-"`
}

// Record is one live session and its document set.
type Record struct {
	ID        string    `json:"session_id"`
	Files     []File    `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// Service encapsulates session storage. Safe for concurrent handlers.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]Record
}

// NewService bootstraps the in-memory registry.
func NewService() *Service {
	return &Service{sessions: make(map[string]Record)}
}

// CreateSession mints a session holding the uploaded files. When sessionID
// names an existing session the files are appended to it instead, matching
// the upload endpoint's optional session_id field.
func (s *Service) CreateSession(_ context.Context, sessionID string, files []File) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if existing, ok := s.sessions[sessionID]; ok {
			existing.Files = append(existing.Files, files...)
			s.sessions[sessionID] = existing
			return existing, nil
		}
	}

	record := Record{
		ID:        uuid.NewString(),
		Files:     append([]File(nil), files...),
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[record.ID] = record
	return record, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return record, nil
}

// DeleteSession removes a session. Deleting an unknown id is an error so the
// handler can report 404, though clients treat teardown as best-effort.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}
