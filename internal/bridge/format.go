package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zulandar/stationmaster/internal/menu"
	"github.com/zulandar/stationmaster/internal/session"
)

// clientMarker prefixes the first line of every message forwarded into a
// manager chat. It is the wire contract that lets a reply be traced back
// to a client even when the structured binding table is empty (for
// example after a restart).
const clientMarker = "Клієнт: "

// anonymousName substitutes for clients whose transport profile carries
// no usable name.
const anonymousName = "Анонім"

// chooserPageLimit caps one page of the /initiate_task client chooser.
const chooserPageLimit = 2000

// Client-facing texts.
const (
	textAuthPrompt = "Для початку роботи необхідно авторизуватись.\n" +
		"Введіть код підприємства 👇"
	textAuthInvalid = "Невірний код підприємства!\n" +
		"(для уточнення коду зателефонуйте менеджеру)\n\n" + textAuthPrompt
	textChooseSection = "Оберіть, будь ласка, розділ, користуючись кнопками нижче 👇"
	textComment       = "Будь ласка, напишіть Ваше звернення 🖌"
	textAsk           = "Попередження!\n" +
		"Якщо звернутись до менеджера без вибору типу запитання, " +
		"Ваше звернення може оброблятися більш тривалий термін (до 48 годин).\n" + textComment
	textInvalidCommand   = "Невірна команда ⚠\n"
	textTicketClosed     = "Звернення закрито менеджером"
	textManagerInitiated = "Менеджер розпочав діалог, очікуйте на його звернення..."
	textAttachmentLost   = "⚠ Не вдалося завантажити вкладення — повідомлення передано без нього"
)

// Manager-facing texts.
const (
	textManagerWelcome = "Онлайн-помічник вітає Вас!\n" +
		"В цей чат будуть надходити звернення від клієнтів."
	textGuideCaption    = "При бажанні можете ознайомитись з інструкцією користувача 👆"
	textDuplicateTicket = "У клієнта вже є відкрите звернення"
	textNoOpenTicket    = "У клієнта немає відкритого звернення"
	textUnknownClient   = "Невідомий клієнт — авторизації не знайдено"
	textUnboundReply    = "Не вдалося визначити клієнта ⚠\n" +
		"Відповідайте на повідомлення, що починається з «" + clientMarker + "...»"
	textRefreshed     = "Дані клієнтів оновлено ✅"
	textRefreshFailed = "Не вдалося оновити дані клієнтів ⚠"
	textChooseClient  = "Оберіть клієнта, щоб відправити йому звернення:\n"
	textInitiateReply = "Напишіть звернення клієнту та відправте його як відповідь на це повідомлення 👇"
)

// formatTicketOpen renders the ticket-opening message sent to a manager.
// The client marker must stay on the first line.
func formatTicketOpen(clientID int64, name string, enterprise int64, topic, body string) string {
	var b strings.Builder
	b.WriteString(clientMarker)
	b.WriteString(strconv.FormatInt(clientID, 10))
	b.WriteString("\nІм'я: ")
	b.WriteString(name)
	b.WriteString("\nПідприємство: ")
	b.WriteString(strconv.FormatInt(enterprise, 10))
	b.WriteString("\nТема: ")
	b.WriteString(topic)
	b.WriteString("\nТекст: ")
	b.WriteString(body)
	return b.String()
}

// formatRelay renders a follow-up client message forwarded to a manager
// while the ticket is open.
func formatRelay(clientID int64, name, text string) string {
	var b strings.Builder
	b.WriteString(clientMarker)
	b.WriteString(strconv.FormatInt(clientID, 10))
	b.WriteString("\nІм'я: ")
	b.WriteString(name)
	b.WriteString("\n")
	b.WriteString(text)
	return b.String()
}

// formatSLAAck renders the acknowledgement sent to a client after a
// ticket is opened.
func formatSLAAck(hours int) string {
	return fmt.Sprintf("Звернення відправлено - очікуйте відповідь менеджера (до %d годин)", hours)
}

// formatAuthWelcome renders the post-authorization greeting.
func formatAuthWelcome(enterpriseName string) string {
	return "Ви зареєструвалися як представник підприємства " + enterpriseName + ".\n" + textChooseSection
}

// formatInitiatePrompt renders the binding-marker message sent to the
// manager starting a conversation with a client.
func formatInitiatePrompt(clientID int64) string {
	return clientMarker + strconv.FormatInt(clientID, 10) + "\n" + textInitiateReply
}

// parseClientMarker extracts the client ID from the first line of a
// forwarded message. Returns false when the marker is absent or
// malformed.
func parseClientMarker(text string) (int64, bool) {
	if !strings.HasPrefix(text, clientMarker) {
		return 0, false
	}
	rest := text[len(clientMarker):]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// formatChooser renders the paginated client chooser for a manager,
// splitting into pages of at most chooserPageLimit characters.
func formatChooser(clients []session.Session) []string {
	page := textChooseClient
	var pages []string
	for _, c := range clients {
		page += fmt.Sprintf("%d (%s) - /initiate_task_%d\n", c.Enterprise, c.Name, c.ID)
		if len(page) > chooserPageLimit {
			pages = append(pages, page)
			page = ""
		}
	}
	if page != "" {
		pages = append(pages, page)
	}
	return pages
}

// displayName returns a usable client name for message headers.
func displayName(name string) string {
	if name == "" {
		return anonymousName
	}
	return name
}

// nodeKeyboard builds the button grid for a catalog node.
func nodeKeyboard(n *menu.Node) Keyboard {
	return Keyboard{Rows: n.Rows}
}

// commentKeyboard is shown alongside leaf help texts: contact the
// manager, or go back.
func commentKeyboard() Keyboard {
	return Keyboard{Rows: [][]string{{menu.CommentKey, menu.BackKey}}}
}

// backKeyboard is shown when a ticket is closed.
func backKeyboard() Keyboard {
	return Keyboard{Rows: [][]string{{menu.BackKey}}}
}

// forceReply asks the counterpart to answer this exact message.
func forceReply() Keyboard {
	return Keyboard{ForceReply: true}
}
