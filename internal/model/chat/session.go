package chat

// Mode selects how answers are grounded: against the built-in reference
// corpus or against documents the user uploaded for this session.
type Mode string

const (
	ModeResume    Mode = "resume"
	ModeDocuments Mode = "documents"
)

// Valid reports whether m is one of the known query modes.
func (m Mode) Valid() bool {
	return m == ModeResume || m == ModeDocuments
}

// Session binds uploaded documents to a conversation. Resume mode never holds
// one; ID is the server-issued token and is empty when no session exists.
type Session struct {
	ID        string     `json:"sessionId"`
	Mode      Mode       `json:"mode"`
	Documents []Document `json:"documents,omitempty"`
}
