// Package bridge routes support conversations between clients and managers
// over a chat transport: it owns the per-client state machine, the topic
// menu flow, ticket open/close, and manager reply binding.
package bridge

import "context"

// Adapter is the interface that platform-specific transports must satisfy.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound messages from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundMessage, error)

	// SendText delivers a text message and returns the platform message
	// ID of the sent message.
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)

	// SendFile delivers a local file with a caption and returns the
	// platform message ID of the sent message.
	SendFile(ctx context.Context, chatID int64, path, caption string, kb Keyboard) (int, error)

	// Download fetches an attachment into dir and returns the local
	// path. The caller owns the file and is responsible for deleting it.
	Download(ctx context.Context, att Attachment, dir string) (string, error)

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// InboundMessage represents a message received from the chat platform.
type InboundMessage struct {
	ChatID      int64       // platform chat identifier (also the sender for direct chats)
	MessageID   int         // platform message identifier
	SenderName  string      // best-effort human name of the sender
	Text        string      // raw message text (or media caption)
	ReplyToID   int         // message ID this message replies to; 0 if none
	ReplyToText string      // text of the replied-to message; "" if none
	Attachment  *Attachment // media carried by the message; nil if none
}

// Attachment is an opaque handle to a media file held by the platform.
type Attachment struct {
	FileID string // platform file identifier
	Name   string // original file name, if known
}

// Keyboard describes the reply keyboard attached to an outbound message.
// Zero value means "leave the current keyboard as is".
type Keyboard struct {
	Rows       [][]string // button grid; labels are sent back verbatim when pressed
	ForceReply bool       // ask the client to reply to this exact message
	Remove     bool       // remove any visible keyboard
}

// Outbound is one message the router asks the dispatcher to deliver.
type Outbound struct {
	ChatID   int64
	Text     string   // message text, or caption when FilePath is set
	FilePath string   // local file to send; empty for plain text
	Keyboard Keyboard

	// DeleteFile requests removal of FilePath after the send attempt,
	// successful or not.
	DeleteFile bool

	// BindClient, when non-zero, associates the sent message with that
	// client in the ticket registry so manager replies to it can be
	// routed back.
	BindClient int64
}
