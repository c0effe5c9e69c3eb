package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/transcript"
)

const watchURL = "https://www.youtube.com/watch?v=%s"

// minTranscriptLen guards against caption tracks that exist but carry no
// usable text.
const minTranscriptLen = 20

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([0-9A-Za-z_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of the usual YouTube URL
// shapes (watch, short link, embed).
func ExtractVideoID(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", transcript.ErrInvalidReference
	}
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", transcript.ErrInvalidReference
}

// IsVideoURL reports whether the text looks like a YouTube link.
func IsVideoURL(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, marker := range []string{"youtu.be/", "youtube.com/watch", "youtube.com/embed/"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// captionTrack mirrors the track descriptors embedded in the watch page.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated tracks
}

// Client fetches transcripts from YouTube's caption tracks. Track selection
// tries the preferred languages' manual captions first, then any manual
// captions, then auto-generated ones, and reports a single no-transcript
// failure when every strategy comes up empty.
type Client struct {
	httpClient *http.Client
	languages  []string
	logger     *log.Logger
}

var _ transcript.Provider = (*Client)(nil)

func NewClient(languages []string, timeout time.Duration, logger *log.Logger) *Client {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[YT] ", log.LstdFlags)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		languages:  languages,
		logger:     logger,
	}
}

// Fetch resolves the video ID, lists available caption tracks and returns the
// transcript of the best track as plain text.
func (c *Client) Fetch(ctx context.Context, sourceRef string) (string, error) {
	videoID, err := ExtractVideoID(sourceRef)
	if err != nil {
		return "", err
	}

	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	track, ok := pickTrack(tracks, c.languages)
	if !ok {
		return "", fmt.Errorf("video %s: %w", videoID, transcript.ErrNoTranscript)
	}
	if track.Kind == "asr" {
		c.logger.Printf("video %s: using auto-generated %s captions", videoID, track.LanguageCode)
	}

	text, err := c.fetchTrack(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("video %s: %w", videoID, err)
	}
	if len(strings.TrimSpace(text)) < minTranscriptLen {
		return "", fmt.Errorf("video %s: transcript too short: %w", videoID, transcript.ErrNoTranscript)
	}
	return text, nil
}

var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// listTracks scrapes the caption track descriptors out of the watch page.
func (c *Client) listTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(watchURL, videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", strings.Join(c.languages, ","))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	m := captionTracksRe.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("video %s has no caption tracks: %w", videoID, transcript.ErrNoTranscript)
	}
	var tracks []captionTrack
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	return tracks, nil
}

// pickTrack applies the fallback order: manual captions in a preferred
// language, any manual captions, auto-generated in a preferred language, any
// auto-generated captions.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	manual := func(t captionTrack) bool { return t.Kind != "asr" }
	auto := func(t captionTrack) bool { return t.Kind == "asr" }

	for _, lang := range languages {
		for _, t := range tracks {
			if manual(t) && t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if manual(t) {
			return t, true
		}
	}
	for _, lang := range languages {
		for _, t := range tracks {
			if auto(t) && t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if auto(t) {
			return t, true
		}
	}
	return captionTrack{}, false
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTrack downloads a caption track and flattens it to plain text.
func (c *Client) fetchTrack(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("captions returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	return flattenTimedText(body)
}

func flattenTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("decode captions: %w", err)
	}
	parts := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		// caption payloads double-escape entities
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}
