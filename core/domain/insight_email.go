// Package domain contains the core types of the email insight pipeline.
package domain

// NoDeadline is the sentinel for "no deadline found in the message body".
// It maps to the lowest urgency.
const NoDeadline = 999

// Part is one node of a message's MIME part tree as delivered by a
// mailbox provider. Data is the part body, base64url-encoded the way the
// Gmail API encodes it; it may be empty for container parts.
type Part struct {
	MimeType    string  `json:"mime_type"`
	Filename    string  `json:"filename,omitempty"`
	Disposition string  `json:"disposition,omitempty"`
	Data        string  `json:"data,omitempty"`
	Parts       []*Part `json:"parts,omitempty"`
}

// Envelope is a single message as supplied by a mailbox source: stable
// identifier, the headers the pipeline needs, a pre-computed snippet and
// the full part tree. The pipeline never mutates an envelope.
type Envelope struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
	Payload *Part  `json:"payload,omitempty"`
}

// EmailResult is the terminal record produced for every processed message.
// It is always fully populated; stages that failed or timed out contribute
// clearly marked placeholder values instead of being omitted.
type EmailResult struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	DaysLeft int    `json:"days_left"`
	Urgency  int    `json:"urgency"`
	Summary  string `json:"summary"`
	Tone     string `json:"tone"`
}

// UploadResult is the response for the single-upload path.
type UploadResult struct {
	Summary  string `json:"summary"`
	Tone     string `json:"tone"`
	RawEmail string `json:"raw_email"`
}
