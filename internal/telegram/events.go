package telegram

import "strings"

// EventKind is the closed set of inbound event shapes. Updates are
// normalized into one of these before dispatch, so routing is a switch
// with no registration-order dependence.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStart
	EventText
	EventCallback
	EventPhoto
)

type Event struct {
	Kind       EventKind
	ChatID     int64
	From       *User
	Text       string // message text or callback data
	Payload    string // /start deep-link payload
	FileID     string // photo/document file to fetch
	CallbackID string
	MessageID  int64
}

// classify normalizes a raw update into an Event. Returns false for
// update shapes the bot does not handle.
func classify(upd Update) (Event, bool) {
	if cb := upd.CallbackQuery; cb != nil {
		if cb.Message == nil {
			return Event{}, false
		}
		return Event{
			Kind:       EventCallback,
			ChatID:     cb.Message.Chat.ID,
			From:       &cb.From,
			Text:       cb.Data,
			CallbackID: cb.ID,
			MessageID:  cb.Message.MessageID,
		}, true
	}

	msg := upd.Message
	if msg == nil {
		return Event{}, false
	}

	ev := Event{
		ChatID:    msg.Chat.ID,
		From:      msg.From,
		MessageID: msg.MessageID,
	}

	if fileID := photoFileID(msg); fileID != "" {
		ev.Kind = EventPhoto
		ev.FileID = fileID
		return ev, true
	}

	text := strings.TrimSpace(msg.Text)
	if isCommand(msg, "start") {
		ev.Kind = EventStart
		ev.Payload = startPayload(text)
		return ev, true
	}

	ev.Kind = EventText
	ev.Text = text
	return ev, true
}

// photoFileID picks the largest photo rendition, or an image document.
func photoFileID(msg *Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID
	}
	return ""
}

func isCommand(msg *Message, cmd string) bool {
	for _, e := range msg.Entities {
		if e.Type == "bot_command" && e.Offset == 0 && e.Offset+e.Length <= len(msg.Text) {
			cmdText := msg.Text[e.Offset : e.Offset+e.Length]
			cmdText = strings.Split(cmdText, "@")[0]
			return cmdText == "/"+cmd
		}
	}
	// No entities (some clients omit them): compare the first token.
	token := strings.Fields(msg.Text)
	if len(token) == 0 {
		return false
	}
	return strings.Split(token[0], "@")[0] == "/"+cmd
}

func startPayload(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}
