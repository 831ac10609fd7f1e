// Package update defines the raw inbound event shape and its classification
// into a closed set of tagged variants. Dispatch is an exhaustive type switch
// over Event, so adding a new kind is a compile-time-checked change.
package update

import "strings"

// Raw is one inbound event as delivered by the messaging platform.
// UpdateID is a monotonically increasing sequence id per bot.
type Raw struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Voice     *Media `json:"voice,omitempty"`
	Audio     *Media `json:"audio,omitempty"`
}

// CallbackQuery is an inline-keyboard button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// User identifies the sender on the platform.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Media references an uploaded file (voice note or audio).
type Media struct {
	FileID string `json:"file_id"`
}

// Event is the closed set of actionable inbound event variants.
type Event interface{ event() }

// Command is a slash command with whitespace-separated arguments.
type Command struct {
	Name string
	Args []string
}

// Text is a plain text message.
type Text struct {
	Text string
}

// Voice is a voice or audio message referencing an uploaded file.
type Voice struct {
	FileID string
}

// Callback is an inline-keyboard button press with its payload.
type Callback struct {
	ID      string
	Payload string
}

func (Command) event()  {}
func (Text) event()     {}
func (Voice) event()    {}
func (Callback) event() {}

// Envelope pairs a classified event with its sequence id and sender identity.
type Envelope struct {
	Seq    int64
	Sender User
	ChatID int64
	Event  Event
}

// Classify maps a raw event to exactly one tagged variant. Events the bot
// cannot act on (edits, joins, stickers, messages without a sender) return
// ok=false and are dropped without error.
func Classify(r Raw) (Envelope, bool) {
	if m := r.Message; m != nil && m.From != nil {
		env := Envelope{Seq: r.UpdateID, Sender: *m.From, ChatID: m.Chat.ID}
		switch {
		case m.Voice != nil:
			env.Event = Voice{FileID: m.Voice.FileID}
		case m.Audio != nil:
			env.Event = Voice{FileID: m.Audio.FileID}
		case strings.HasPrefix(m.Text, "/"):
			name, args := parseCommand(m.Text)
			if name == "" {
				return Envelope{}, false
			}
			env.Event = Command{Name: name, Args: args}
		case m.Text != "":
			env.Event = Text{Text: m.Text}
		default:
			return Envelope{}, false
		}
		return env, true
	}

	if q := r.CallbackQuery; q != nil && q.Data != "" {
		env := Envelope{Seq: r.UpdateID, Sender: q.From, Event: Callback{ID: q.ID, Payload: q.Data}}
		if q.Message != nil {
			env.ChatID = q.Message.Chat.ID
		}
		return env, true
	}

	return Envelope{}, false
}

// parseCommand splits "/name arg1 arg2" on the leading slash and first
// whitespace. A bot-name suffix ("/start@mybot") is stripped.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil
	}
	if len(fields) == 1 {
		return strings.ToLower(name), nil
	}
	return strings.ToLower(name), fields[1:]
}
