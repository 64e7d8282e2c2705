package adapter

import "context"

// ChatUser identifies the chat participant an inbound event belongs to.
type ChatUser struct {
	ID       int64
	Username string
}

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// Reply is the outbound content request produced by the conversation core.
// The transport decides whether to send it as a new message or edit one in
// place. A zero Reply means "nothing to send".
type Reply struct {
	Text string
	Rows [][]InlineButton
}

func (r Reply) Empty() bool { return r.Text == "" }

// FileKind is the attachment class the transport reports for an upload.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindImage    FileKind = "image"
	FileKindOther    FileKind = "other"
)

// FileInput is an inbound file event.
type FileInput struct {
	Kind      FileKind
	Ref       string
	Name      string
	SizeBytes int64
}

// ChatTransport is the outbound boundary with the messaging platform.
// The conversation core never talks to the network directly.
type ChatTransport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	// ForwardDocument re-sends an uploaded file by its transport reference.
	ForwardDocument(ctx context.Context, chatID int64, fileRef, caption string) error
}
