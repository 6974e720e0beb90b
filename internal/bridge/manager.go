package bridge

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/zulandar/stationmaster/internal/session"
)

// ManagerHandler processes messages arriving in manager chats: the
// service commands and plain replies that relay back to clients.
type ManagerHandler struct {
	store    *session.Store
	registry *Registry
	adapter  Adapter
	mediaDir string

	adminID   int64
	guidePath string
	refresh   func(ctx context.Context) error
}

// ManagerOpts holds parameters for creating a ManagerHandler.
type ManagerOpts struct {
	Store     *session.Store
	Registry  *Registry
	Adapter   Adapter
	MediaDir  string
	AdminID   int64
	GuidePath string
	// Refresh re-reads the authorization data. Wired by the daemon to the
	// directory merge-refresh.
	Refresh func(ctx context.Context) error
}

// NewManagerHandler creates a ManagerHandler.
func NewManagerHandler(opts ManagerOpts) (*ManagerHandler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("bridge: manager: store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("bridge: manager: registry is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bridge: manager: adapter is required")
	}
	refresh := opts.Refresh
	if refresh == nil {
		refresh = func(context.Context) error { return nil }
	}
	return &ManagerHandler{
		store:     opts.Store,
		registry:  opts.Registry,
		adapter:   opts.Adapter,
		mediaDir:  opts.MediaDir,
		adminID:   opts.AdminID,
		guidePath: opts.GuidePath,
		refresh:   refresh,
	}, nil
}

// Handle processes one inbound manager message and returns the messages
// to dispatch.
func (m *ManagerHandler) Handle(ctx context.Context, msg InboundMessage) []Outbound {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		return m.welcome(msg)
	case strings.HasPrefix(text, "/refresh"):
		return m.handleRefresh(ctx, msg)
	case strings.HasPrefix(text, "/initiate_task"):
		return m.initiate(msg, text)
	case strings.HasPrefix(text, "/finish_task"):
		return m.finish(msg)
	default:
		return m.relay(ctx, msg, text)
	}
}

func (m *ManagerHandler) welcome(msg InboundMessage) []Outbound {
	outs := []Outbound{{ChatID: msg.ChatID, Text: textManagerWelcome}}
	if m.guidePath != "" {
		outs = append(outs, Outbound{ChatID: msg.ChatID, Text: textGuideCaption, FilePath: m.guidePath})
	}
	return outs
}

// handleRefresh is admin-only; anyone else gets silence.
func (m *ManagerHandler) handleRefresh(ctx context.Context, msg InboundMessage) []Outbound {
	if msg.ChatID != m.adminID {
		return nil
	}
	if err := m.refresh(ctx); err != nil {
		log.Printf("bridge: refresh: %v", err)
		return []Outbound{{ChatID: msg.ChatID, Text: textRefreshFailed}}
	}
	return []Outbound{{ChatID: msg.ChatID, Text: textRefreshed}}
}

// initiate opens a manager-initiated ticket. Without a client id suffix it
// lists the manager's clients with ready-made commands instead.
func (m *ManagerHandler) initiate(msg InboundMessage, text string) []Outbound {
	suffix := strings.TrimPrefix(text, "/initiate_task")
	suffix = strings.TrimPrefix(suffix, "_")
	clientID, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return m.chooser(msg.ChatID)
	}

	release := m.store.Acquire(clientID)
	defer release()

	sess, ok := m.store.Get(clientID)
	if !ok {
		return []Outbound{{ChatID: msg.ChatID, Text: textUnknownClient}}
	}
	if sess.Chatting {
		return []Outbound{{ChatID: msg.ChatID, Text: textDuplicateTicket}}
	}

	m.store.SetChatting(clientID, true)
	if err := m.registry.Open(Ticket{ClientID: clientID, ManagerID: msg.ChatID}); err != nil {
		log.Printf("bridge: open ticket: %v", err)
	}

	return []Outbound{
		{ChatID: msg.ChatID, Text: formatInitiatePrompt(clientID), BindClient: clientID},
		{ChatID: clientID, Text: textManagerInitiated, Keyboard: forceReply()},
	}
}

func (m *ManagerHandler) chooser(managerID int64) []Outbound {
	clients := m.store.ListByManager(managerID)
	var outs []Outbound
	for _, page := range formatChooser(clients) {
		outs = append(outs, Outbound{ChatID: managerID, Text: page})
	}
	return outs
}

// finish closes the ticket the replied-to message belongs to and hands
// the client back to the menu.
func (m *ManagerHandler) finish(msg InboundMessage) []Outbound {
	clientID := m.boundClient(msg)
	if clientID == 0 {
		return []Outbound{{ChatID: msg.ChatID, Text: textUnboundReply}}
	}

	release := m.store.Acquire(clientID)
	defer release()

	sess, ok := m.store.Get(clientID)
	if !ok {
		return []Outbound{{ChatID: msg.ChatID, Text: textUnknownClient}}
	}
	if !sess.Chatting {
		return []Outbound{{ChatID: msg.ChatID, Text: textNoOpenTicket}}
	}

	m.store.SetChatting(clientID, false)
	m.registry.Close(clientID)

	return []Outbound{{ChatID: clientID, Text: textTicketClosed, Keyboard: backKeyboard()}}
}

// relay forwards a plain manager reply to the client the replied-to
// message resolves to.
func (m *ManagerHandler) relay(ctx context.Context, msg InboundMessage, text string) []Outbound {
	clientID := m.boundClient(msg)
	if clientID == 0 {
		if msg.ReplyToID != 0 {
			return []Outbound{{ChatID: msg.ChatID, Text: textUnboundReply}}
		}
		return nil
	}

	out, lost := forwardOutbound(ctx, m.adapter, msg, m.mediaDir, clientID, 0, text)
	outs := []Outbound{out}
	if lost {
		outs = append(outs, Outbound{ChatID: msg.ChatID, Text: textAttachmentLost})
	}
	return outs
}

// boundClient resolves which client a manager reply addresses: the
// registry binding first, the marker line of the quoted text as the
// fallback after a restart.
func (m *ManagerHandler) boundClient(msg InboundMessage) int64 {
	if msg.ReplyToID == 0 {
		return 0
	}
	if id, ok := m.registry.Resolve(msg.ChatID, msg.ReplyToID); ok {
		return id
	}
	if id, ok := parseClientMarker(msg.ReplyToText); ok {
		return id
	}
	return 0
}
