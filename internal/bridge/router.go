package bridge

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/zulandar/stationmaster/internal/directory"
	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

// Router is the client-side state machine. Given one inbound client
// message it applies the session transition and returns the messages to
// dispatch. Callers must serialize invocations per client id (the daemon
// holds the store's client lock around each call).
type Router struct {
	store    *session.Store
	catalog  *menu.Catalog
	gateway  directory.Gateway
	registry *Registry
	adapter  Adapter
	mediaDir string

	documentsManager int64
	defaultManager   int64
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	Store            *session.Store
	Catalog          *menu.Catalog
	Gateway          directory.Gateway
	Registry         *Registry
	Adapter          Adapter
	MediaDir         string
	DocumentsManager int64
	DefaultManager   int64
}

// NewRouter creates a Router.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bridge: router: store is required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("bridge: router: catalog is required")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("bridge: router: gateway is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("bridge: router: registry is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bridge: router: adapter is required")
	}
	if opts.DefaultManager == 0 {
		return nil, fmt.Errorf("bridge: router: default manager is required")
	}
	documents := opts.DocumentsManager
	if documents == 0 {
		documents = opts.DefaultManager
	}
	return &Router{
		store:            opts.Store,
		catalog:          opts.Catalog,
		gateway:          opts.Gateway,
		registry:         opts.Registry,
		adapter:          opts.Adapter,
		mediaDir:         opts.MediaDir,
		documentsManager: documents,
		defaultManager:   opts.DefaultManager,
	}, nil
}

// HandleClient processes one inbound client message. Precedence: an open
// ticket relays everything verbatim; then the ask/comment triggers; then
// the back-to-main literal and /start; then a pending ticket body; then
// menu navigation. Unmatched input is reported, never dropped.
func (r *Router) HandleClient(ctx context.Context, msg InboundMessage) []Outbound {
	text := strings.TrimSpace(msg.Text)

	sess, authorized := r.store.Get(msg.ChatID)
	if !authorized {
		return r.authorize(ctx, msg, text)
	}

	isMain := strings.HasPrefix(text, "/start") || text == menu.BackKey

	var outs []Outbound
	switch {
	case sess.Chatting:
		outs = r.relay(ctx, msg, sess, text)
	case text == menu.AskKey:
		r.store.SetAwaitingBody(msg.ChatID, true)
		outs = []Outbound{{ChatID: msg.ChatID, Text: textAsk, Keyboard: forceReply()}}
	case text == menu.CommentKey:
		r.store.SetAwaitingBody(msg.ChatID, true)
		outs = []Outbound{{ChatID: msg.ChatID, Text: textComment, Keyboard: forceReply()}}
	case isMain:
		r.store.SetDocumenting(msg.ChatID, false)
		r.store.SetAwaitingBody(msg.ChatID, false)
		r.store.SetMenuKey(msg.ChatID, "")
		outs = []Outbound{{ChatID: msg.ChatID, Text: textChooseSection, Keyboard: nodeKeyboard(r.catalog.Root())}}
	case sess.AwaitingBody:
		outs = r.openTicket(ctx, msg, sess, text)
	default:
		outs = r.navigate(msg, sess, text)
	}

	// Remember the raw input for topic recovery — but never the trigger
	// labels, so the SLA lookup sees the topic that preceded them.
	if text != menu.AskKey && text != menu.CommentKey {
		r.store.SetLastText(msg.ChatID, text)
	}
	return outs
}

// authorize handles a message from a client with no session yet.
// A valid enterprise code registers the client; anything else re-prompts.
func (r *Router) authorize(ctx context.Context, msg InboundMessage, text string) []Outbound {
	code, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return []Outbound{{ChatID: msg.ChatID, Text: textAuthPrompt, Keyboard: forceReply()}}
	}
	if !r.gateway.ValidEnterpriseCodes(ctx)[code] {
		return []Outbound{{ChatID: msg.ChatID, Text: textAuthInvalid, Keyboard: forceReply()}}
	}

	// The responsible manager is resolved once, at registration.
	managers := r.gateway.ManagersForEnterprise(ctx, code)
	rec := session.Record{
		ID:         msg.ChatID,
		Name:       msg.SenderName,
		Enterprise: code,
		Manager:    managers[0],
	}
	if err := r.store.Register(rec); err != nil {
		log.Printf("bridge: register client %d: %v", msg.ChatID, err)
		return []Outbound{{ChatID: msg.ChatID, Text: textAuthPrompt, Keyboard: forceReply()}}
	}

	name := r.gateway.EnterpriseName(ctx, code)
	return []Outbound{{
		ChatID:   msg.ChatID,
		Text:     formatAuthWelcome(name),
		Keyboard: nodeKeyboard(r.catalog.Root()),
	}}
}

// openTicket turns the pending ticket body into a forward to the resolved
// manager and acknowledges the client with the topic's response-time
// target.
func (r *Router) openTicket(ctx context.Context, msg InboundMessage, sess session.Session, body string) []Outbound {
	topic := sess.LastText
	manager := r.resolveManager(sess)
	sla := r.catalog.SLA(topic)

	fwd := formatTicketOpen(msg.ChatID, displayName(sess.Name), sess.Enterprise, topic, body)
	out, lost := forwardOutbound(ctx, r.adapter, msg, r.mediaDir, manager, msg.ChatID, fwd)
	outs := []Outbound{out}
	if lost {
		outs = append(outs, Outbound{ChatID: msg.ChatID, Text: textAttachmentLost})
	}

	r.store.SetChatting(msg.ChatID, true)
	r.store.SetAwaitingBody(msg.ChatID, false)
	if err := r.registry.Open(Ticket{
		ClientID:  msg.ChatID,
		ManagerID: manager,
		Topic:     topic,
		SLAHours:  sla,
	}); err != nil {
		log.Printf("bridge: open ticket: %v", err)
	}

	outs = append(outs, Outbound{ChatID: msg.ChatID, Text: formatSLAAck(sla), Keyboard: forceReply()})
	return outs
}

// relay forwards a client message verbatim (with the marker header) to
// the bound manager while the ticket is open. The client gets no
// acknowledgement.
func (r *Router) relay(ctx context.Context, msg InboundMessage, sess session.Session, text string) []Outbound {
	manager := r.resolveManager(sess)
	fwd := formatRelay(msg.ChatID, displayName(sess.Name), text)
	out, lost := forwardOutbound(ctx, r.adapter, msg, r.mediaDir, manager, msg.ChatID, fwd)
	outs := []Outbound{out}
	if lost {
		outs = append(outs, Outbound{ChatID: msg.ChatID, Text: textAttachmentLost})
	}
	return outs
}

// navigate matches the input against the menu tree.
func (r *Router) navigate(msg InboundMessage, sess session.Session, text string) []Outbound {
	current := r.currentNode(sess.MenuKey)

	child, ok := current.Child(text)
	if !ok {
		// Stale keyboards can deliver a label from another menu; every
		// label is unique, so honor it wherever it lives.
		child, ok = r.catalog.Find(text)
	}
	if !ok || child == r.catalog.Root() {
		return []Outbound{{
			ChatID:   msg.ChatID,
			Text:     textInvalidCommand + textChooseSection,
			Keyboard: nodeKeyboard(current),
		}}
	}

	if child.IsLeaf() {
		if child.Documents {
			r.store.SetDocumenting(msg.ChatID, true)
		}
		return []Outbound{{ChatID: msg.ChatID, Text: child.Response, Keyboard: commentKeyboard()}}
	}

	r.store.SetMenuKey(msg.ChatID, child.Key)
	return []Outbound{{ChatID: msg.ChatID, Text: textChooseSection, Keyboard: nodeKeyboard(child)}}
}

// currentNode resolves the session's menu position, defaulting to root.
func (r *Router) currentNode(menuKey string) *menu.Node {
	if menuKey != "" {
		if n, ok := r.catalog.Find(menuKey); ok && !n.IsLeaf() {
			return n
		}
	}
	return r.catalog.Root()
}

// resolveManager picks the forward target for a client: the documents
// manager while the client is on a documents topic, otherwise the
// manager assigned at registration, otherwise the default.
func (r *Router) resolveManager(sess session.Session) int64 {
	if sess.Documenting {
		return r.documentsManager
	}
	if sess.Manager != 0 {
		return sess.Manager
	}
	return r.defaultManager
}
