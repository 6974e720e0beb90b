// Package telegram implements the bridge Adapter for Telegram using long
// polling.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zulandar/stationmaster/internal/bridge"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 60

// api abstracts the tgbotapi.BotAPI methods we use, enabling test mocks.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
	StopReceivingUpdates()
}

// Adapter implements bridge.Adapter for Telegram via bot long polling.
type Adapter struct {
	token    string
	fileBase string // base URL for file downloads; overridable in tests
	client   *http.Client

	mu        sync.Mutex
	bot       api
	connected bool
	closed    bool
	inbound   chan bridge.InboundMessage
}

// AdapterOpts holds parameters for creating a Telegram Adapter.
type AdapterOpts struct {
	Token string

	// For testing: inject a mock client instead of the real Bot API.
	Bot api
}

// New creates a Telegram Adapter.
func New(opts AdapterOpts) (*Adapter, error) {
	if opts.Token == "" && opts.Bot == nil {
		return nil, fmt.Errorf("telegram: token is required")
	}
	return &Adapter{
		token:    opts.Token,
		fileBase: fmt.Sprintf(tgbotapi.FileEndpoint, opts.Token, ""),
		client:   http.DefaultClient,
		bot:      opts.Bot,
		inbound:  make(chan bridge.InboundMessage, 100),
	}, nil
}

// Connect authenticates against the Bot API.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("telegram: adapter closed")
	}
	if a.bot == nil {
		bot, err := tgbotapi.NewBotAPI(a.token)
		if err != nil {
			return fmt.Errorf("telegram: connect: %w", err)
		}
		a.bot = bot
	}
	a.connected = true
	return nil
}

// Listen starts the long-polling pump and returns the inbound channel.
// Must be called after Connect.
func (a *Adapter) Listen(ctx context.Context) (<-chan bridge.InboundMessage, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.connected {
		return nil, fmt.Errorf("telegram: not connected")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := a.bot.GetUpdatesChan(u)

	go a.pump(ctx, updates)
	return a.inbound, nil
}

// pump converts raw updates into inbound messages until the updates
// channel closes or the context is cancelled.
func (a *Adapter) pump(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer close(a.inbound)
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.Message == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case a.inbound <- convert(upd.Message):
			}
		}
	}
}

// convert maps a Telegram message onto the transport-neutral shape.
func convert(m *tgbotapi.Message) bridge.InboundMessage {
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	in := bridge.InboundMessage{
		ChatID:     m.Chat.ID,
		MessageID:  m.MessageID,
		SenderName: senderName(m.From),
		Text:       text,
	}
	if m.ReplyToMessage != nil {
		in.ReplyToID = m.ReplyToMessage.MessageID
		in.ReplyToText = m.ReplyToMessage.Text
		if in.ReplyToText == "" {
			in.ReplyToText = m.ReplyToMessage.Caption
		}
	}
	switch {
	case m.Document != nil:
		in.Attachment = &bridge.Attachment{FileID: m.Document.FileID, Name: m.Document.FileName}
	case len(m.Photo) > 0:
		// Photos arrive in ascending resolutions; take the largest.
		best := m.Photo[len(m.Photo)-1]
		in.Attachment = &bridge.Attachment{FileID: best.FileID, Name: best.FileUniqueID + ".jpg"}
	}
	return in
}

// senderName builds a human-readable sender label from the Telegram
// profile.
func senderName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if u.UserName != "" {
		if name == "" {
			return "@" + u.UserName
		}
		return name + " (@" + u.UserName + ")"
	}
	return name
}

// SendText delivers a text message with the keyboard and returns the sent
// message id.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string, kb bridge.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if rm := replyMarkup(kb); rm != nil {
		msg.ReplyMarkup = rm
	}
	sent, err := a.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram: send text to %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendFile uploads a local file as a document with a caption and returns
// the sent message id.
func (a *Adapter) SendFile(ctx context.Context, chatID int64, path, caption string, kb bridge.Keyboard) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if rm := replyMarkup(kb); rm != nil {
		doc.ReplyMarkup = rm
	}
	sent, err := a.bot.Send(doc)
	if err != nil {
		return 0, fmt.Errorf("telegram: send file to %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// replyMarkup translates the neutral keyboard into the Telegram form.
// Returns nil for the zero keyboard so the current one stays visible.
func replyMarkup(kb bridge.Keyboard) interface{} {
	switch {
	case kb.ForceReply:
		return tgbotapi.ForceReply{ForceReply: true}
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(kb.Rows) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
		for _, labels := range kb.Rows {
			row := make([]tgbotapi.KeyboardButton, 0, len(labels))
			for _, label := range labels {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		return tgbotapi.NewReplyKeyboard(rows...)
	default:
		return nil
	}
}

// Download fetches the attachment into dir and returns the local path.
func (a *Adapter) Download(ctx context.Context, att bridge.Attachment, dir string) (string, error) {
	f, err := a.bot.GetFile(tgbotapi.FileConfig{FileID: att.FileID})
	if err != nil {
		return "", fmt.Errorf("telegram: get file %s: %w", att.FileID, err)
	}

	name := att.Name
	if name == "" {
		name = filepath.Base(f.FilePath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("telegram: media dir: %w", err)
	}
	dest := filepath.Join(dir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.fileBase+f.FilePath, nil)
	if err != nil {
		return "", fmt.Errorf("telegram: download %s: %w", att.FileID, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("telegram: download %s: %w", att.FileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telegram: download %s: status %d", att.FileID, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("telegram: write %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("telegram: write %s: %w", dest, err)
	}
	return dest, nil
}

// Close stops long polling. The pump then drains and closes the inbound
// channel.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.connected {
		a.bot.StopReceivingUpdates()
		a.connected = false
	}
	return nil
}
