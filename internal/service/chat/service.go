// Package chat is the top-level controller of the Echo chat experience. It
// owns mode, transcript, upload and error state, drives the session manager,
// transport and transcript reconciler, and is the only package the
// presentation layer talks to.
package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sharondevs/echo-chat/internal/client"
	"github.com/sharondevs/echo-chat/internal/model/chat"
	"github.com/sharondevs/echo-chat/internal/session"
	"github.com/sharondevs/echo-chat/internal/transcript"
)

// EventStream is the decoded event sequence of one chat request.
type EventStream interface {
	Next() (chat.StreamEvent, error)
	Close() error
}

// Transport is the outbound surface the controller depends on. *client.Client
// satisfies it; tests substitute fakes.
type Transport interface {
	UploadDocuments(ctx context.Context, docs []chat.Document, sessionID string) (client.UploadResult, error)
	StreamChat(ctx context.Context, message string, mode chat.Mode, sessionID string) (EventStream, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// State is the immutable snapshot handed to the presentation layer. It is
// exactly the render contract: mode, transcript, uploads, error, loading.
type State struct {
	Mode          chat.Mode
	Messages      []chat.Message
	UploadedFiles []chat.Document
	Err           string
	Loading       bool
}

// Notifier receives every state change. It is always invoked outside the
// service's internal lock; the terminal UI forwards snapshots into its own
// event loop.
type Notifier func(State)

// Service is the chat orchestrator. All mutation funnels through its
// operations; collaborators never share ambient state.
type Service struct {
	mu sync.Mutex

	transport Transport
	sessions  *session.Manager
	notify    Notifier
	interval  time.Duration

	mode     chat.Mode
	messages []chat.Message
	files    []chat.Document
	errMsg   string
	loading  bool

	// generation tags the stream and session pair active at request time.
	// Commits and completions carrying a stale generation are discarded, so
	// an abandoned stream can never write into a newer transcript.
	generation uint64
}

// NewService creates a controller in resume mode with an empty transcript.
func NewService(transport Transport, notify Notifier) *Service {
	if notify == nil {
		notify = func(State) {}
	}
	return &Service{
		transport: transport,
		sessions:  session.NewManager(transport),
		notify:    notify,
		interval:  transcript.DefaultCommitInterval,
		mode:      chat.ModeResume,
	}
}

// SetCommitInterval overrides the transcript throttle window. Zero or
// negative values keep the default.
func (s *Service) SetCommitInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// Snapshot returns the current render state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SwitchMode changes the grounding mode. Switching away from documents mode
// issues exactly one best-effort session teardown; transcript, uploads and
// error state are cleared before new input is accepted. Same-mode calls are
// no-ops.
func (s *Service) SwitchMode(ctx context.Context, mode chat.Mode) {
	if !mode.Valid() {
		return
	}

	s.mu.Lock()
	if mode == s.mode {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	s.messages = nil
	s.files = nil
	s.errMsg = ""
	s.loading = false
	s.generation++ // abandon any in-flight stream
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.sessions.Teardown(ctx)
	s.notify(state)
}

// SubmitFiles replaces the uploaded document set. An empty list is a no-op.
// On success the new session replaces the old one and the transcript is
// cleared; on failure the previous files and session survive so a failed
// re-upload cannot destroy a working setup.
func (s *Service) SubmitFiles(ctx context.Context, docs []chat.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, doc := range docs {
		if !doc.Accepted() {
			return s.reject(reasonBadFileType)
		}
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return s.reject(reasonUploadInFlight)
	}
	s.loading = true
	s.errMsg = ""
	gen := s.generation
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)

	_, err := s.sessions.Replace(ctx, docs)

	s.mu.Lock()
	if gen != s.generation {
		// The owner moved on mid-upload (mode switch, cleared uploads). The
		// freshly created session must not outlive the state that asked for
		// it, so tear it down instead of installing the result.
		s.mu.Unlock()
		if err == nil {
			s.sessions.Teardown(ctx)
		}
		return nil
	}
	s.loading = false
	if err != nil {
		if errors.Is(err, session.ErrUploadInFlight) {
			s.errMsg = reasonUploadInFlight
		} else {
			s.errMsg = err.Error()
		}
		state = s.snapshotLocked()
		s.mu.Unlock()
		s.notify(state)
		if errors.Is(err, session.ErrUploadInFlight) {
			return &ValidationError{Reason: reasonUploadInFlight}
		}
		return err
	}
	s.files = docs
	s.messages = nil
	s.generation++ // a fresh session invalidates any straggling commits
	state = s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
	return nil
}

// RemoveFile drops one uploaded document by index. Removing the last
// document tears the session down and clears the transcript, matching the
// invariant that a documents session always has documents.
func (s *Service) RemoveFile(ctx context.Context, index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.files) {
		s.mu.Unlock()
		return
	}
	s.files = append(s.files[:index:index], s.files[index+1:]...)
	emptied := len(s.files) == 0
	if emptied {
		s.messages = nil
		s.generation++
		s.loading = false
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	if emptied {
		s.sessions.Teardown(ctx)
	}
	s.notify(state)
}

// SubmitMessage validates and issues one chat request. Rejections (blank
// input, a request already in flight, documents mode without uploads) set the
// error state and make no network call. Only one request may be in flight at
// a time; a second attempt is rejected, not queued.
func (s *Service) SubmitMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.reject(reasonBlankMessage)
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return s.reject(reasonRequestInFlight)
	}
	if s.mode == chat.ModeDocuments && len(s.files) == 0 {
		s.mu.Unlock()
		return s.reject(reasonNoDocuments)
	}

	userMsg := chat.NewUserMessage(text)
	assistantMsg := chat.NewAssistantPlaceholder()
	s.messages = append(s.messages, userMsg, assistantMsg)
	s.loading = true
	s.errMsg = ""
	s.generation++
	gen := s.generation
	mode := s.mode
	interval := s.interval
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)

	go s.runStream(ctx, gen, mode, text, assistantMsg.ID, interval)
	return nil
}

// runStream drives one request end to end: open the stream, feed the
// reconciler, force the trailing commit, release the loading gate.
func (s *Service) runStream(ctx context.Context, gen uint64, mode chat.Mode, text, messageID string, interval time.Duration) {
	sessionID := ""
	if mode == chat.ModeDocuments {
		sessionID = s.sessions.ID()
	}

	stream, err := s.transport.StreamChat(ctx, text, mode, sessionID)
	if err != nil {
		// Nothing streamed: drop the placeholder rather than show a husk.
		s.failBeforeStream(gen, messageID, err)
		return
	}
	defer stream.Close()

	rec := transcript.New(messageID, gen, interval, s.applyCommit)

	for {
		if s.currentGeneration() != gen {
			// The owner moved on (mode switch, cleared uploads). Stop
			// consuming; the reconciler state is discarded with us.
			log.Printf("[chat] abandoning stale stream for message %s", messageID)
			return
		}

		event, err := stream.Next()
		if err != nil {
			if err != io.EOF {
				log.Printf("[chat] stream read error: %v", err)
				s.setStreamError(gen, err.Error())
			}
			break
		}

		if applyErr := rec.Apply(event); applyErr != nil {
			var streamErr *transcript.StreamError
			if errors.As(applyErr, &streamErr) {
				s.setStreamError(gen, streamErr.Reason)
			}
			break
		}
	}

	rec.Finish()
	s.completeStream(gen)
}

// applyCommit copies accumulated stream state into the owning message. Stale
// generations are ignored, never applied to a newer message.
func (s *Service) applyCommit(commit transcript.Commit) {
	s.mu.Lock()
	if commit.Generation != s.generation {
		s.mu.Unlock()
		return
	}
	for i := range s.messages {
		if s.messages[i].ID == commit.MessageID {
			s.messages[i].Content = commit.Content
			s.messages[i].Sources = commit.Sources
			break
		}
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

func (s *Service) failBeforeStream(gen uint64, messageID string, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			break
		}
	}
	s.errMsg = err.Error()
	s.loading = false
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

func (s *Service) setStreamError(gen uint64, reason string) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.errMsg = reason
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

func (s *Service) completeStream(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.loading = false
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

func (s *Service) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// reject records a local validation failure and surfaces it without touching
// the network.
func (s *Service) reject(reason string) error {
	s.mu.Lock()
	s.errMsg = reason
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
	return &ValidationError{Reason: reason}
}

func (s *Service) snapshotLocked() State {
	return State{
		Mode:          s.mode,
		Messages:      append([]chat.Message(nil), s.messages...),
		UploadedFiles: append([]chat.Document(nil), s.files...),
		Err:           s.errMsg,
		Loading:       s.loading,
	}
}
