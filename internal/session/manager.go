// Package session owns the logical document session: its creation on upload,
// its teardown on mode switches and document changes, and the invariant that
// at most one session is live at a time.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/sharondevs/echo-chat/internal/client"
	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// ErrUploadInFlight rejects a second upload while one is still running.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// Transport is the slice of the backend client the manager needs.
type Transport interface {
	UploadDocuments(ctx context.Context, docs []chat.Document, sessionID string) (client.UploadResult, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Manager is the single owner of the session identifier. Teardown and
// creation are sequenced under one lock so a chat request can never read a
// session id concurrently with its deletion.
type Manager struct {
	mu        sync.Mutex
	transport Transport
	current   chat.Session
	uploading bool
}

// NewManager creates a manager with no active session.
func NewManager(transport Transport) *Manager {
	return &Manager{transport: transport}
}

// Current returns a copy of the active session; a zero ID means none.
func (m *Manager) Current() chat.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// ID returns the active session identifier, or "" when no session exists.
// Resume-mode requests always see "".
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.ID
}

// Replace uploads a new document set, tearing down any existing session
// first. The two remote calls are sequential so the server never tracks two
// live sessions for one client. On upload failure the local session state is
// left untouched so a working session survives a failed re-upload.
func (m *Manager) Replace(ctx context.Context, docs []chat.Document) (chat.Session, error) {
	m.mu.Lock()
	if m.uploading {
		m.mu.Unlock()
		return chat.Session{}, ErrUploadInFlight
	}
	m.uploading = true
	prior := m.current
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.uploading = false
		m.mu.Unlock()
	}()

	if prior.ID != "" {
		if err := m.transport.DeleteSession(ctx, prior.ID); err != nil {
			log.Printf("[session] best-effort teardown of %s failed: %v", prior.ID, err)
		}
	}

	result, err := m.transport.UploadDocuments(ctx, docs, "")
	if err != nil {
		return chat.Session{}, err
	}

	next := chat.Session{
		ID:        result.SessionID,
		Mode:      chat.ModeDocuments,
		Documents: docs,
	}

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()

	log.Printf("[session] established session %s with %d documents", next.ID, result.FileCount)
	return next, nil
}

// Teardown deletes the active session remotely and clears it locally. Remote
// failure is logged and swallowed: stale server sessions expire on their own.
func (m *Manager) Teardown(ctx context.Context) {
	m.mu.Lock()
	current := m.current
	m.current = chat.Session{}
	m.mu.Unlock()

	if current.ID == "" {
		return
	}
	if err := m.transport.DeleteSession(ctx, current.ID); err != nil {
		log.Printf("[session] best-effort teardown of %s failed: %v", current.ID, err)
	}
}
