package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "gemini-flash-lite-latest", 5*time.Second)
}

func TestGenerateReturnsCandidateText(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-flash-lite-latest:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Salom! "},{"text":"Qanday yordam bera olaman?"}]},"finishReason":"STOP"}]}`))
	})

	text, err := c.Generate(context.Background(), "Savol: salom", 500, 0.7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Salom! Qanday yordam bera olaman?" {
		t.Fatalf("unexpected text: %q", text)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "Savol: salom" {
		t.Fatalf("bad request contents: %+v", got.Contents)
	}
	if got.GenerationConfig.MaxOutputTokens != 500 || got.GenerationConfig.Temperature != 0.7 {
		t.Fatalf("bad generation config: %+v", got.GenerationConfig)
	}
}

func TestGenerateEmptyCandidateFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := c.Generate(context.Background(), "prompt", 100, 0.7); err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestGenerateAPIErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := c.Generate(context.Background(), "prompt", 100, 0.7)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected quota error, got %v", err)
	}
}
