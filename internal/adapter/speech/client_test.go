package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranscribeSendsURLAndLanguage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"text":" salom dunyo "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	text, err := c.Transcribe(context.Background(), "https://files.example/voice.oga", "uz")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "salom dunyo" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
	if got["url"] != "https://files.example/voice.oga" || got["language"] != "uz" {
		t.Fatalf("bad request body: %v", got)
	}
}

func TestTranscribeUnconfiguredFails(t *testing.T) {
	c := NewClient("", time.Second)
	if c.Configured() {
		t.Fatal("expected unconfigured client")
	}
	if _, err := c.Transcribe(context.Background(), "u", "uz"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestTranscribeEmptyTextFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Transcribe(context.Background(), "u", "uz"); err == nil {
		t.Fatal("expected error for empty transcription")
	}
}
