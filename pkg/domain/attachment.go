package domain

import "strings"

// Attachment is a file staged for the next user turn. It lives only in
// session state: the base64 payload is shown alongside the rendered message
// and discarded at the end of the turn, never persisted with the chat.
type Attachment struct {
	FileName string
	MimeType string
	Data     string // base64-encoded payload
	IsImage  bool
}

func (a *Attachment) Label() string {
	var b strings.Builder
	b.WriteString(a.FileName)
	if a.MimeType != "" {
		b.WriteString(" (" + a.MimeType + ")")
	}
	return b.String()
}
