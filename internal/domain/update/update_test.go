package update

import (
	"reflect"
	"testing"
)

func msg(text string) *Message {
	return &Message{From: &User{ID: 7, Username: "ali"}, Chat: Chat{ID: 42}, Text: text}
}

func TestClassifyText(t *testing.T) {
	env, ok := Classify(Raw{UpdateID: 10, Message: msg("salom")})
	if !ok {
		t.Fatal("expected ok")
	}
	if env.Seq != 10 || env.ChatID != 42 || env.Sender.ID != 7 {
		t.Fatalf("bad envelope: %+v", env)
	}
	if got, want := env.Event, (Text{Text: "salom"}); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestClassifyCommand(t *testing.T) {
	cases := []struct {
		text string
		want Command
	}{
		{"/start", Command{Name: "start"}},
		{"/language", Command{Name: "language"}},
		{"/marketing IPhone 15 Pro", Command{Name: "marketing", Args: []string{"IPhone", "15", "Pro"}}},
		{"/HELP@somebot", Command{Name: "help"}},
	}
	for _, tc := range cases {
		env, ok := Classify(Raw{UpdateID: 1, Message: msg(tc.text)})
		if !ok {
			t.Fatalf("%q: expected ok", tc.text)
		}
		cmd, isCmd := env.Event.(Command)
		if !isCmd {
			t.Fatalf("%q: expected Command, got %#v", tc.text, env.Event)
		}
		if cmd.Name != tc.want.Name || !reflect.DeepEqual(cmd.Args, tc.want.Args) {
			t.Fatalf("%q: got %#v, want %#v", tc.text, cmd, tc.want)
		}
	}
}

func TestClassifyVoicePreferredOverText(t *testing.T) {
	m := msg("caption")
	m.Voice = &Media{FileID: "voice-1"}
	env, ok := Classify(Raw{UpdateID: 3, Message: m})
	if !ok {
		t.Fatal("expected ok")
	}
	if got, want := env.Event, (Voice{FileID: "voice-1"}); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestClassifyAudioAsVoice(t *testing.T) {
	m := msg("")
	m.Audio = &Media{FileID: "audio-9"}
	env, ok := Classify(Raw{UpdateID: 4, Message: m})
	if !ok {
		t.Fatal("expected ok")
	}
	if got, want := env.Event, (Voice{FileID: "audio-9"}); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestClassifyCallback(t *testing.T) {
	raw := Raw{
		UpdateID: 5,
		CallbackQuery: &CallbackQuery{
			ID:      "cb-1",
			From:    User{ID: 8},
			Data:    "lang_ru",
			Message: &Message{Chat: Chat{ID: 99}},
		},
	}
	env, ok := Classify(raw)
	if !ok {
		t.Fatal("expected ok")
	}
	if env.ChatID != 99 || env.Sender.ID != 8 {
		t.Fatalf("bad envelope: %+v", env)
	}
	if got, want := env.Event, (Callback{ID: "cb-1", Payload: "lang_ru"}); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestClassifyDropsUnactionable(t *testing.T) {
	cases := []Raw{
		{UpdateID: 1},
		{UpdateID: 2, Message: &Message{Chat: Chat{ID: 1}, Text: "no sender"}},
		{UpdateID: 3, Message: msg("")},
		{UpdateID: 4, Message: msg("/")},
		{UpdateID: 5, CallbackQuery: &CallbackQuery{ID: "x", From: User{ID: 1}}},
	}
	for i, raw := range cases {
		if _, ok := Classify(raw); ok {
			t.Fatalf("case %d: expected drop", i)
		}
	}
}
