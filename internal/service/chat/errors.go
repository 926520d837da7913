package chat

// ValidationError rejects an operation before any network call is made:
// blank input, an empty file list, an unsupported file type, or a documents
// question with nothing uploaded.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Messages shown to the user for local rejections.
const (
	reasonBlankMessage    = "please enter a question before sending"
	reasonRequestInFlight = "a response is still streaming, wait for it to finish"
	reasonNoDocuments     = "please upload documents before asking questions in documents mode"
	reasonUploadInFlight  = "an upload is already in progress"
	reasonBadFileType     = "only PDF, TXT, DOC and DOCX files can be uploaded"
)
