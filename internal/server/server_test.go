package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/assistant"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/limiter"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session/memory"
)

type transcriptStub struct{ text string }

func (t *transcriptStub) Fetch(ctx context.Context, sourceRef string) (string, error) {
	return t.text, nil
}

type generatorStub struct{ reply string }

func (g *generatorStub) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	return g.reply, nil
}

func newTestServer(maxRequests int) http.Handler {
	store := session.NewStore(memory.New(), time.Hour, log.New(io.Discard, "", 0))
	lim := limiter.New(maxRequests, time.Minute)
	assist := assistant.New(store, lim,
		&transcriptStub{text: "a transcript about things"},
		&generatorStub{reply: "the summary"},
		nil, log.New(io.Discard, "", 0))
	return New(assist)
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChat_VideoThenQuestion(t *testing.T) {
	h := newTestServer(100)

	rec := postChat(t, h, `{"user_id":"u1","text":"https://youtu.be/dQw4w9WgXcQ"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Reply, "the summary") {
		t.Errorf("unexpected reply %q", out.Reply)
	}

	rec = postChat(t, h, `{"user_id":"u1","text":"what is this about?"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("question should succeed, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChat_NoSessionIs404(t *testing.T) {
	h := newTestServer(100)
	rec := postChat(t, h, `{"user_id":"u1","text":"what is this about?"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for no session, got %d", rec.Code)
	}
}

func TestChat_RateLimitedIs429(t *testing.T) {
	h := newTestServer(1)
	postChat(t, h, `{"user_id":"u1","text":"https://youtu.be/dQw4w9WgXcQ"}`)
	rec := postChat(t, h, `{"user_id":"u1","text":"another question"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Too many requests") {
		t.Errorf("429 body should carry the retry message, got %s", rec.Body.String())
	}
}

func TestChat_MissingUserIDIs400(t *testing.T) {
	h := newTestServer(100)
	rec := postChat(t, h, `{"text":"hello there"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestChat_InvalidInputIs400(t *testing.T) {
	h := newTestServer(100)
	rec := postChat(t, h, `{"user_id":"u1","text":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank text, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(100)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}
