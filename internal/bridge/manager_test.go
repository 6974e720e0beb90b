package bridge

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

type managerEnv struct {
	handler  *ManagerHandler
	store    *session.Store
	registry *Registry
	adapter  *MockAdapter

	refreshed int
}

func newManagerEnv(t *testing.T) *managerEnv {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.jsonl"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	env := &managerEnv{store: store, registry: NewRegistry(), adapter: NewMockAdapter()}
	handler, err := NewManagerHandler(ManagerOpts{
		Store:     store,
		Registry:  env.registry,
		Adapter:   env.adapter,
		MediaDir:  t.TempDir(),
		AdminID:   testAdmin,
		GuidePath: "guide.pdf",
		Refresh: func(context.Context) error {
			env.refreshed++
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new manager handler: %v", err)
	}
	env.handler = handler
	return env
}

func (e *managerEnv) register(t *testing.T, id int64, name string, enterprise, manager int64) {
	t.Helper()
	err := e.store.Register(session.Record{ID: id, Name: name, Enterprise: enterprise, Manager: manager})
	if err != nil {
		t.Fatalf("register %d: %v", id, err)
	}
}

func (e *managerEnv) handle(msg InboundMessage) []Outbound {
	return e.handler.Handle(context.Background(), msg)
}

func TestManagerWelcomeSendsGuide(t *testing.T) {
	env := newManagerEnv(t)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/start"})
	if len(outs) != 2 {
		t.Fatalf("expected welcome + guide, got %d outbounds", len(outs))
	}
	if outs[0].Text != textManagerWelcome {
		t.Errorf("welcome = %q", outs[0].Text)
	}
	if outs[1].FilePath != "guide.pdf" || outs[1].DeleteFile {
		t.Errorf("guide outbound = %+v, want the persistent guide file", outs[1])
	}
}

func TestRefreshAdminOnly(t *testing.T) {
	env := newManagerEnv(t)

	if outs := env.handle(InboundMessage{ChatID: 111, Text: "/refresh"}); outs != nil {
		t.Fatalf("non-admin refresh should be ignored, got %+v", outs)
	}
	if env.refreshed != 0 {
		t.Fatal("non-admin refresh must not run")
	}

	outs := env.handle(InboundMessage{ChatID: testAdmin, Text: "/refresh"})
	if len(outs) != 1 || outs[0].Text != textRefreshed {
		t.Fatalf("expected refresh ack, got %+v", outs)
	}
	if env.refreshed != 1 {
		t.Errorf("refresh ran %d times, want 1", env.refreshed)
	}
}

func TestRefreshFailureReported(t *testing.T) {
	env := newManagerEnv(t)
	handler, err := NewManagerHandler(ManagerOpts{
		Store:    env.store,
		Registry: env.registry,
		Adapter:  env.adapter,
		AdminID:  testAdmin,
		Refresh:  func(context.Context) error { return errors.New("db down") },
	})
	if err != nil {
		t.Fatalf("new manager handler: %v", err)
	}

	outs := handler.Handle(context.Background(), InboundMessage{ChatID: testAdmin, Text: "/refresh"})
	if len(outs) != 1 || outs[0].Text != textRefreshFailed {
		t.Fatalf("expected refresh failure notice, got %+v", outs)
	}
}

func TestInitiateByID(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 42, "Ірина", 12, 111)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task_42"})
	if len(outs) != 2 {
		t.Fatalf("expected prompt + client notice, got %d outbounds", len(outs))
	}

	prompt := outs[0]
	if prompt.ChatID != 111 || prompt.BindClient != 42 {
		t.Errorf("prompt = %+v, want bound marker message to the manager", prompt)
	}
	if !strings.HasPrefix(prompt.Text, clientMarker+"42\n") {
		t.Errorf("prompt must start with the client marker: %q", prompt.Text)
	}

	notice := outs[1]
	if notice.ChatID != 42 || notice.Text != textManagerInitiated {
		t.Errorf("client notice = %+v", notice)
	}
	if !notice.Keyboard.ForceReply {
		t.Error("client notice should force a reply")
	}

	sess, _ := env.store.Get(42)
	if !sess.Chatting {
		t.Error("initiation should open the conversation window")
	}
	if _, ok := env.registry.Get(42); !ok {
		t.Error("registry should carry the manager-initiated ticket")
	}
}

func TestInitiateDuplicate(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 42, "Ірина", 12, 111)
	env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task_42"})

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task_42"})
	if len(outs) != 1 || outs[0].Text != textDuplicateTicket {
		t.Fatalf("expected duplicate refusal, got %+v", outs)
	}
}

func TestInitiateUnknownClient(t *testing.T) {
	env := newManagerEnv(t)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task_640"})
	if len(outs) != 1 || outs[0].Text != textUnknownClient {
		t.Fatalf("expected unknown-client notice, got %+v", outs)
	}
}

func TestInitiateChooser(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 42, "Ірина", 12, 111)
	env.register(t, 43, "Петро", 12, 111)
	env.register(t, 44, "Чужий", 34, 222)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task"})
	if len(outs) != 1 {
		t.Fatalf("expected one chooser page, got %d", len(outs))
	}
	page := outs[0].Text
	if !strings.HasPrefix(page, textChooseClient) {
		t.Errorf("chooser should start with its header: %q", page)
	}
	if !strings.Contains(page, "/initiate_task_42") || !strings.Contains(page, "/initiate_task_43") {
		t.Errorf("chooser misses this manager's clients: %q", page)
	}
	if strings.Contains(page, "/initiate_task_44") {
		t.Errorf("chooser leaked another manager's client: %q", page)
	}
}

func TestChooserPagination(t *testing.T) {
	env := newManagerEnv(t)
	name := strings.Repeat("а", 60)
	for i := int64(0); i < 50; i++ {
		env.register(t, 1000+i, name, 12, 111)
	}

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task"})
	if len(outs) < 2 {
		t.Fatalf("expected multiple pages, got %d", len(outs))
	}
	for i, out := range outs {
		if len(out.Text) > chooserPageLimit+200 {
			t.Errorf("page %d exceeds the limit by too much: %d chars", i, len(out.Text))
		}
	}
}

func TestFinishClosesTicket(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)
	env.store.SetChatting(777, true)
	if err := env.registry.Open(Ticket{ClientID: 777, ManagerID: 111}); err != nil {
		t.Fatalf("open ticket: %v", err)
	}
	env.registry.Bind(111, 5, 777)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/finish_task", ReplyToID: 5})
	if len(outs) != 1 {
		t.Fatalf("expected one outbound, got %d", len(outs))
	}
	if outs[0].ChatID != 777 || outs[0].Text != textTicketClosed {
		t.Errorf("close notice = %+v", outs[0])
	}
	if len(outs[0].Keyboard.Rows) != 1 || outs[0].Keyboard.Rows[0][0] != menu.BackKey {
		t.Errorf("close notice keyboard = %v, want the back button", outs[0].Keyboard.Rows)
	}

	sess, _ := env.store.Get(777)
	if sess.Chatting {
		t.Error("finish should close the conversation window")
	}
	if _, ok := env.registry.Get(777); ok {
		t.Error("finish should remove the open ticket")
	}
}

func TestFinishViaMarkerFallback(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)
	env.store.SetChatting(777, true)

	// No registry binding, as after a restart; only the quoted text.
	outs := env.handle(InboundMessage{
		ChatID:      111,
		Text:        "/finish_task",
		ReplyToID:   5,
		ReplyToText: clientMarker + "777\nІм'я: Олена\nТема: х",
	})
	if len(outs) != 1 || outs[0].ChatID != 777 || outs[0].Text != textTicketClosed {
		t.Fatalf("marker fallback failed: %+v", outs)
	}
}

func TestFinishWithoutOpenTicket(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)
	env.registry.Bind(111, 5, 777)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/finish_task", ReplyToID: 5})
	if len(outs) != 1 || outs[0].Text != textNoOpenTicket {
		t.Fatalf("expected no-open-ticket notice, got %+v", outs)
	}
}

func TestFinishUnbound(t *testing.T) {
	env := newManagerEnv(t)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/finish_task"})
	if len(outs) != 1 || outs[0].Text != textUnboundReply {
		t.Fatalf("expected unbound notice, got %+v", outs)
	}
}

func TestReplyRelaysToClient(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)
	env.registry.Bind(111, 5, 777)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "Доброго дня!", ReplyToID: 5})
	if len(outs) != 1 {
		t.Fatalf("expected one outbound, got %d", len(outs))
	}
	if outs[0].ChatID != 777 || outs[0].Text != "Доброго дня!" {
		t.Errorf("relay = %+v", outs[0])
	}
	if outs[0].BindClient != 0 {
		t.Error("client-bound relays must not create bindings")
	}
}

func TestReplyMarkerFallbackSurvivesRestart(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)

	outs := env.handle(InboundMessage{
		ChatID:      111,
		Text:        "Відповідь після перезапуску",
		ReplyToID:   9,
		ReplyToText: clientMarker + "777\nтекст",
	})
	if len(outs) != 1 || outs[0].ChatID != 777 {
		t.Fatalf("marker fallback failed: %+v", outs)
	}
}

func TestUnboundReplyNotice(t *testing.T) {
	env := newManagerEnv(t)

	outs := env.handle(InboundMessage{
		ChatID:      111,
		Text:        "кому це?",
		ReplyToID:   9,
		ReplyToText: "повідомлення без маркера",
	})
	if len(outs) != 1 || outs[0].Text != textUnboundReply {
		t.Fatalf("expected unbound notice, got %+v", outs)
	}
}

func TestPlainManagerChatterIgnored(t *testing.T) {
	env := newManagerEnv(t)

	if outs := env.handle(InboundMessage{ChatID: 111, Text: "просто текст"}); outs != nil {
		t.Fatalf("plain chatter should be ignored, got %+v", outs)
	}
}

func TestReplyWithAttachment(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 777, "Олена", 12, 111)
	env.registry.Bind(111, 5, 777)

	outs := env.handle(InboundMessage{
		ChatID:     111,
		Text:       "накладна",
		ReplyToID:  5,
		Attachment: &Attachment{FileID: "f9", Name: "invoice.pdf"},
	})
	if len(outs) != 1 {
		t.Fatalf("expected one outbound, got %d", len(outs))
	}
	if outs[0].ChatID != 777 || !strings.HasSuffix(outs[0].FilePath, "invoice.pdf") || !outs[0].DeleteFile {
		t.Errorf("relay = %+v", outs[0])
	}
}

func TestChooserListsSortedByEnterprise(t *testing.T) {
	env := newManagerEnv(t)
	env.register(t, 2, "Б", 34, 111)
	env.register(t, 1, "А", 12, 111)

	outs := env.handle(InboundMessage{ChatID: 111, Text: "/initiate_task"})
	page := outs[0].Text
	first := strings.Index(page, fmt.Sprintf("%d (", 12))
	second := strings.Index(page, fmt.Sprintf("%d (", 34))
	if first < 0 || second < 0 || first > second {
		t.Errorf("chooser not sorted by enterprise: %q", page)
	}
}
