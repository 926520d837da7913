// Package client wraps the outbound HTTP surface of the Echo chat backend:
// multipart document upload, the streaming chat request, and best-effort
// session teardown.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// DefaultTimeout bounds the wait for a first response. The streaming phase
// itself is not subject to it.
const DefaultTimeout = 30 * time.Second

// Client talks to one Echo backend instance.
type Client struct {
	baseURL string

	// httpClient serves the short request/response calls and carries a full
	// request timeout. streamClient only bounds the response headers so a
	// long-lived stream body is never cut off mid-flight.
	httpClient   *http.Client
	streamClient *http.Client
}

// New creates a client for the backend at baseURL. A zero timeout falls back
// to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		streamClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// UploadResult is the backend's answer to a document upload.
type UploadResult struct {
	Message   string `json:"message"`
	FileCount int    `json:"file_count"`
	SessionID string `json:"session_id"`
}

// UploadDocuments sends the documents as one multipart request. A non-empty
// sessionID asks the backend to attach the files to that session instead of
// minting a new one. Never retried: resubmitting could index the files twice.
func (c *Client) UploadDocuments(ctx context.Context, docs []chat.Document, sessionID string) (UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, doc := range docs {
		part, err := writer.CreateFormFile("files", doc.Name)
		if err != nil {
			return UploadResult{}, &UploadError{Err: err}
		}
		if doc.Content != nil {
			if _, err := io.Copy(part, doc.Content); err != nil {
				return UploadResult{}, &UploadError{Err: fmt.Errorf("reading %s: %w", doc.Name, err)}
			}
		}
	}
	if sessionID != "" {
		if err := writer.WriteField("session_id", sessionID); err != nil {
			return UploadResult{}, &UploadError{Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, &UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return UploadResult{}, &UploadError{Status: resp.StatusCode}
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UploadResult{}, &UploadError{Err: fmt.Errorf("decoding upload response: %w", err)}
	}
	return result, nil
}

type chatRequest struct {
	Message   string  `json:"message"`
	Mode      string  `json:"mode"`
	SessionID *string `json:"session_id"`
}

// StreamChat opens the streaming chat response for one question. The returned
// Stream owns the live response body; the caller must drain it with Next and
// Close it when done. sessionID is empty in resume mode (sent as null).
func (c *Client) StreamChat(ctx context.Context, message string, mode chat.Mode, sessionID string) (*Stream, error) {
	payload := chatRequest{Message: message, Mode: string(mode)}
	if sessionID != "" {
		payload.SessionID = &sessionID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stream-chat", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &TransportError{Status: resp.StatusCode}
	}

	return newStream(resp.Body), nil
}

// DeleteSession tears down a server-side session. Best-effort by contract:
// callers log failures and continue, stale sessions expire on their own.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/session/"+sessionID, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("session delete returned status %d", resp.StatusCode)
	}
	return nil
}

// SessionInfo fetches session introspection data. Not used by the controller
// itself; exposed for diagnostics.
func (c *Client) SessionInfo(ctx context.Context, sessionID string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/"+sessionID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session info returned status %d", resp.StatusCode)
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return info, nil
}

// Health probes the backend root endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
