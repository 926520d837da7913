package client

import "fmt"

// UploadError reports a failed document upload: a non-2xx response or a
// network failure. Uploads are never retried automatically because a resubmit
// could duplicate server-side indexing.
type UploadError struct {
	Status int
	Err    error
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload failed with status %d", e.Status)
	}
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// TransportError reports a chat request that failed before any streaming
// began: a non-2xx status line or a network-level failure.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("chat request failed with status %d", e.Status)
	}
	return fmt.Sprintf("chat request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
