package youtube

import (
	"errors"
	"strings"
	"testing"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/transcript"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
	}
	for _, c := range cases {
		got, err := ExtractVideoID(c.url)
		if err != nil {
			t.Errorf("%s: unexpected error %v", c.url, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %q want %q", c.url, got, c.want)
		}
	}
}

func TestExtractVideoID_Invalid(t *testing.T) {
	for _, url := range []string{"", "   ", "https://example.com/watch", "not a url"} {
		if _, err := ExtractVideoID(url); !errors.Is(err, transcript.ErrInvalidReference) {
			t.Errorf("%q: expected ErrInvalidReference, got %v", url, err)
		}
	}
}

func TestIsVideoURL(t *testing.T) {
	if !IsVideoURL("check this out https://youtu.be/dQw4w9WgXcQ") {
		t.Error("short link should be recognized")
	}
	if IsVideoURL("what is the main argument of the video?") {
		t.Error("questions are not video links")
	}
}

func TestPickTrack_FallbackOrder(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "auto-en", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "manual-de", LanguageCode: "de"},
		{BaseURL: "manual-en", LanguageCode: "en"},
	}

	got, ok := pickTrack(tracks, []string{"en"})
	if !ok || got.BaseURL != "manual-en" {
		t.Errorf("expected preferred-language manual track, got %+v", got)
	}

	got, ok = pickTrack(tracks, []string{"fr"})
	if !ok || got.Kind == "asr" {
		t.Errorf("expected any manual track before auto-generated, got %+v", got)
	}

	onlyAuto := []captionTrack{{BaseURL: "auto-hi", LanguageCode: "hi", Kind: "asr"}}
	got, ok = pickTrack(onlyAuto, []string{"en"})
	if !ok || got.BaseURL != "auto-hi" {
		t.Errorf("expected auto-generated fallback, got %+v", got)
	}

	if _, ok := pickTrack(nil, []string{"en"}); ok {
		t.Error("no tracks should yield no pick")
	}
}

func TestFlattenTimedText(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">hello world</text>
  <text start="2.5" dur="3.0">it&amp;#39;s a test</text>
  <text start="5.5" dur="1.0">   </text>
</transcript>`)
	got, err := flattenTimedText(data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "hello world") || !strings.Contains(got, "it's a test") {
		t.Errorf("unexpected transcript %q", got)
	}
}
