package bridge

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/stationmaster/internal/config"
	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	yaml := fmt.Sprintf(`
telegram:
  token: test-token
paths:
  sessions: %q
  media: %q
managers:
  default: 900
  documents: 901
  admin: 902
directory:
  database: crm
`, filepath.Join(t.TempDir(), "sessions.jsonl"), t.TempDir())
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func startDaemon(t *testing.T) (*MockAdapter, *Daemon, context.CancelFunc, chan struct{}) {
	t.Helper()
	cfg := testConfig(t)
	store, err := session.Open(cfg.Paths.Sessions)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	mock := NewMockAdapter()
	var buf bytes.Buffer
	d, err := NewDaemon(DaemonOpts{
		Config:   cfg,
		Store:    store,
		Catalog:  menu.New(),
		Gateway:  newFakeGateway(),
		Registry: NewRegistry(),
		Adapter:  mock,
		Out:      &buf,
	})
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Run(ctx); err != nil {
			t.Errorf("run: %v", err)
		}
	}()
	waitFor(t, func() bool {
		return strings.Contains(buf.String(), "online")
	}, 2*time.Second)
	return mock, d, cancel, done
}

// sentTo returns the most recent message sent to chatID.
func sentTo(mock *MockAdapter, chatID int64) (SentMessage, bool) {
	all := mock.AllSent()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ChatID == chatID {
			return all[i], true
		}
	}
	return SentMessage{}, false
}

func TestDaemonClientToManagerRoundTrip(t *testing.T) {
	mock, _, cancel, done := startDaemon(t)
	defer func() { cancel(); <-done }()

	// Client authorizes.
	mock.SimulateInbound(InboundMessage{ChatID: 777, SenderName: "Олена", Text: "12"})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 777)
		return ok && strings.Contains(msg.Text, "Аптека Плюс")
	}, 2*time.Second)

	// Client opens a ticket without picking a topic.
	mock.SimulateInbound(InboundMessage{ChatID: 777, SenderName: "Олена", Text: menu.AskKey})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 777)
		return ok && msg.Text == textAsk
	}, 2*time.Second)
	mock.SimulateInbound(InboundMessage{ChatID: 777, SenderName: "Олена", Text: "не працює кабінет"})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 111)
		return ok && strings.HasPrefix(msg.Text, clientMarker+"777\n")
	}, 2*time.Second)

	fwd, _ := sentTo(mock, 111)
	ack, _ := sentTo(mock, 777)
	if ack.Text != formatSLAAck(menu.DefaultSLAHours) {
		t.Errorf("client ack = %q", ack.Text)
	}

	// Manager answers by replying to the forward; the binding resolves it.
	mock.SimulateInbound(InboundMessage{ChatID: 111, Text: "Перевіряємо", ReplyToID: fwd.MessageID})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 777)
		return ok && msg.Text == "Перевіряємо"
	}, 2*time.Second)

	// And closes the ticket the same way.
	mock.SimulateInbound(InboundMessage{ChatID: 111, Text: "/finish_task", ReplyToID: fwd.MessageID})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 777)
		return ok && msg.Text == textTicketClosed
	}, 2*time.Second)
}

func TestDaemonManagerClassification(t *testing.T) {
	mock, _, cancel, done := startDaemon(t)
	defer func() { cancel(); <-done }()

	// An unknown sender is a client and gets the authorization prompt.
	mock.SimulateInbound(InboundMessage{ChatID: 555, Text: "привіт"})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 555)
		return ok && msg.Text == textAuthPrompt
	}, 2*time.Second)

	// A directory manager gets the manager welcome, not the auth flow.
	mock.SimulateInbound(InboundMessage{ChatID: 222, Text: "/start"})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 222)
		return ok && msg.Text == textManagerWelcome
	}, 2*time.Second)
}

func TestDaemonAdminRefresh(t *testing.T) {
	mock, _, cancel, done := startDaemon(t)
	defer func() { cancel(); <-done }()

	mock.SimulateInbound(InboundMessage{ChatID: 902, Text: "/refresh"})
	waitFor(t, func() bool {
		msg, ok := sentTo(mock, 902)
		return ok && msg.Text == textRefreshed
	}, 2*time.Second)
}

func waitFor(t *testing.T, fn func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("waitFor timed out after %v", timeout)
}
