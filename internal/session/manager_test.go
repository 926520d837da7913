package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharondevs/echo-chat/internal/client"
	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// fakeTransport records call order so teardown/creation sequencing is
// observable.
type fakeTransport struct {
	mu        sync.Mutex
	calls     []string
	uploadErr     error
	deleteErr     error
	nextID        string
	uploadStarted chan struct{}
	uploadGate    chan struct{}
}

func (f *fakeTransport) UploadDocuments(_ context.Context, docs []chat.Document, _ string) (client.UploadResult, error) {
	if f.uploadStarted != nil {
		close(f.uploadStarted)
		f.uploadStarted = nil
	}
	if f.uploadGate != nil {
		<-f.uploadGate
	}
	f.mu.Lock()
	f.calls = append(f.calls, "upload")
	f.mu.Unlock()
	if f.uploadErr != nil {
		return client.UploadResult{}, f.uploadErr
	}
	id := f.nextID
	if id == "" {
		id = "s-1"
	}
	return client.UploadResult{SessionID: id, FileCount: len(docs)}, nil
}

func (f *fakeTransport) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, "delete:"+sessionID)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeTransport) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestReplaceCreatesSession(t *testing.T) {
	transport := &fakeTransport{nextID: "s-42"}
	m := NewManager(transport)

	session, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
	require.NoError(t, err)
	require.Equal(t, "s-42", session.ID)
	require.Equal(t, chat.ModeDocuments, session.Mode)
	require.Equal(t, "s-42", m.ID())
	require.Equal(t, []string{"upload"}, transport.recorded())
}

func TestReplaceTearsDownPriorSessionBeforeUploading(t *testing.T) {
	transport := &fakeTransport{nextID: "s-1"}
	m := NewManager(transport)

	_, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
	require.NoError(t, err)

	transport.nextID = "s-2"
	session, err := m.Replace(context.Background(), []chat.Document{{Name: "b.pdf"}})
	require.NoError(t, err)
	require.Equal(t, "s-2", session.ID)

	// Sequential, never interleaved: old delete strictly before new upload.
	require.Equal(t, []string{"upload", "delete:s-1", "upload"}, transport.recorded())
}

func TestReplaceUploadFailureKeepsPriorSessionLocally(t *testing.T) {
	transport := &fakeTransport{nextID: "s-1"}
	m := NewManager(transport)

	_, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
	require.NoError(t, err)

	transport.uploadErr = errors.New("backend rejected upload")
	_, err = m.Replace(context.Background(), []chat.Document{{Name: "b.pdf"}})
	require.Error(t, err)

	require.Equal(t, "s-1", m.ID(), "failed re-upload must not clear the working session")
}

func TestReplaceRejectsOverlappingUpload(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	transport := &fakeTransport{uploadStarted: started, uploadGate: gate}
	m := NewManager(transport)

	done := make(chan error, 1)
	go func() {
		_, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
		done <- err
	}()

	// Wait until the first Replace is holding the upload slot, then the
	// overlapping call must be rejected without touching the transport.
	<-started
	_, err := m.Replace(context.Background(), []chat.Document{{Name: "b.pdf"}})
	require.ErrorIs(t, err, ErrUploadInFlight)

	close(gate)
	require.NoError(t, <-done)
}

func TestTeardownDeletesRemoteAndClearsLocal(t *testing.T) {
	transport := &fakeTransport{nextID: "s-7"}
	m := NewManager(transport)

	_, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
	require.NoError(t, err)

	m.Teardown(context.Background())
	require.Empty(t, m.ID())
	require.Equal(t, []string{"upload", "delete:s-7"}, transport.recorded())
}

func TestTeardownWithoutSessionIsNoop(t *testing.T) {
	transport := &fakeTransport{}
	m := NewManager(transport)

	m.Teardown(context.Background())
	require.Empty(t, transport.recorded())
}

func TestTeardownSwallowsRemoteFailure(t *testing.T) {
	transport := &fakeTransport{nextID: "s-7", deleteErr: errors.New("gone already")}
	m := NewManager(transport)

	_, err := m.Replace(context.Background(), []chat.Document{{Name: "a.pdf"}})
	require.NoError(t, err)

	m.Teardown(context.Background())
	require.Empty(t, m.ID(), "local state clears even when the remote delete fails")
}
