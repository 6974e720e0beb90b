// Package session maintains per-client conversation state for the support
// router: the durable registration record plus the transient routing flags
// that drive the state machine.
package session

// Record is the durable part of a client session. One record is appended
// to the session log on successful authorization and never rewritten.
type Record struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Enterprise int64  `json:"enterprise"`
	Manager    int64  `json:"manager"`
}

// Session is a client's full state: the registration record plus the
// transient flags the router mutates on every inbound message.
//
// A session exists for a client iff that client has completed
// authorization; absence means "not yet authorized".
type Session struct {
	Record

	// Chatting is true while a ticket is open and client messages are
	// relayed verbatim to the bound manager.
	Chatting bool `json:"chatting"`

	// LastText is the last raw text received from the client, excluding
	// the ask/comment trigger labels. It recovers the topic when the
	// ticket body arrives as the next message.
	LastText string `json:"last_text"`

	// Documenting is true when the client is mid-flow on a
	// documents-branch topic; the next ticket routes to the documents
	// manager instead of the assigned one.
	Documenting bool `json:"documenting"`

	// AwaitingBody is true after the client pressed an ask/comment
	// trigger: the next free-text message is the ticket body.
	AwaitingBody bool `json:"awaiting_body"`

	// MenuKey is the key of the menu node the client last entered.
	// Empty means the main menu.
	MenuKey string `json:"menu_key"`
}
