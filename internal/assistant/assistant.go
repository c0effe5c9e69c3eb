package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/limiter"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/llm"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/metrics"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/rank"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/segment"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/transcript"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/transcript/youtube"
)

const (
	// maxPromptChars caps how much transcript goes into the summary prompt.
	maxPromptChars = 12000

	defaultTemperature = 0.3
	defaultMaxTokens   = 2048

	translateMarker = "summarize in"
)

const welcomeReply = `Welcome to YouTube AI Assistant!

I can:
- Summarize YouTube videos
- Answer questions about video content
- Translate summaries to other languages

How to use:
1. Send a YouTube link
2. Wait for the summary
3. Ask questions, or say 'summarize in <language>'

Commands:
/help - detailed guide
/summary - view last summary
/clear - delete saved data`

const helpReply = `Send me a YouTube link and I will fetch the transcript and summarize it.

After that you can:
- Ask any question about the video content
- Say 'summarize in Spanish' (or any language) to translate the summary
- Use /summary to see the last summary again
- Use /clear to delete everything I stored for you

Summaries are kept for 24 hours.`

// Assistant routes inbound chat messages through the rate limiter, the
// session store and the external providers. One instance is created at
// startup and shared by every transport.
type Assistant struct {
	store       *session.Store
	limiter     *limiter.Limiter
	transcripts transcript.Provider
	generator   llm.Provider
	splitter    *segment.Splitter
	logger      *log.Logger

	// userLocks serializes handling per user so replies follow the
	// transport's delivery order; distinct users proceed concurrently. The
	// map lock is only held while looking up the per-user lock, never across
	// provider calls.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func New(store *session.Store, lim *limiter.Limiter, transcripts transcript.Provider, generator llm.Provider, splitter *segment.Splitter, logger *log.Logger) *Assistant {
	if splitter == nil {
		splitter = segment.Default()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ASSIST] ", log.LstdFlags)
	}
	return &Assistant{
		store:       store,
		limiter:     lim,
		transcripts: transcripts,
		generator:   generator,
		splitter:    splitter,
		logger:      logger,
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// HandleMessage processes one inbound (user, text) event and returns the
// reply text. Errors are classified with the sentinel kinds in errors.go.
func (a *Assistant) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	lock := a.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if strings.HasPrefix(text, "/") {
		reply, err := a.handleCommand(ctx, userID, text)
		if err == nil {
			metrics.Requests.WithLabelValues("command").Inc()
		}
		return reply, err
	}

	if !a.limiter.TryAcquire(userID) {
		a.logger.Printf("rate limit exceeded for user %s", userID)
		metrics.Requests.WithLabelValues("rate_limited").Inc()
		return "", ErrRateLimited
	}

	switch {
	case youtube.IsVideoURL(text):
		return a.processVideo(ctx, userID, text)
	case hasTranslateMarker(text):
		return a.translateSummary(ctx, userID, text)
	default:
		return a.answerQuestion(ctx, userID, text)
	}
}

func (a *Assistant) handleCommand(ctx context.Context, userID, text string) (string, error) {
	cmd := strings.ToLower(strings.Fields(text)[0])
	switch cmd {
	case "/start":
		return welcomeReply, nil
	case "/help":
		return helpReply, nil
	case "/summary":
		sess, ok, err := a.store.Get(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if !ok {
			return "", ErrNoSession
		}
		return sess.Summary, nil
	case "/clear":
		if err := a.store.Delete(ctx, userID); err != nil {
			return "", fmt.Errorf("%w: %w", ErrStorage, err)
		}
		return "Your saved data has been deleted.", nil
	default:
		return "", fmt.Errorf("%w: unknown command %s", ErrInvalidInput, cmd)
	}
}

// processVideo fetches the transcript, summarizes it and replaces the user's
// session wholesale. The session is written once, after generation succeeded,
// so a failed pipeline never leaves a partial record behind.
func (a *Assistant) processVideo(ctx context.Context, userID, url string) (string, error) {
	a.logger.Printf("processing video for user %s", userID)

	start := time.Now()
	text, err := a.transcripts.Fetch(ctx, url)
	metrics.TranscriptSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrSourceFetch, err)
	}

	summary, err := a.generate(ctx, buildSummaryPrompt(truncate(text, maxPromptChars)))
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", err
	}

	segments := a.splitter.Split(text)
	if err := a.store.Put(ctx, userID, url, summary, segments); err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}

	a.logger.Printf("summary saved for user %s (%d segments)", userID, len(segments))
	metrics.Requests.WithLabelValues("summary").Inc()
	return summary + "\n\nYou can now ask questions about the video, or say 'summarize in <language>' to translate.", nil
}

func (a *Assistant) answerQuestion(ctx context.Context, userID, question string) (string, error) {
	if len([]rune(question)) < 3 {
		return "", fmt.Errorf("%w: question too short", ErrInvalidInput)
	}

	sess, ok, err := a.store.Get(ctx, userID)
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok {
		return "", ErrNoSession
	}

	contextSegs := rank.Select(question, sess.Segments, rank.DefaultTopK)
	if len(contextSegs) == 0 {
		// a session without segments means the transcript was empty
		return "", ErrNoSession
	}

	answer, err := a.generate(ctx, buildQAPrompt(strings.Join(contextSegs, "\n\n"), question))
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.Requests.WithLabelValues("question").Inc()
	return answer, nil
}

func (a *Assistant) translateSummary(ctx context.Context, userID, text string) (string, error) {
	language, err := parseLanguage(text)
	if err != nil {
		return "", err
	}

	sess, ok, err := a.store.Get(ctx, userID)
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok {
		return "", ErrNoSession
	}

	translated, err := a.generate(ctx, buildTranslatePrompt(language, sess.Summary))
	if err != nil {
		metrics.Requests.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.Requests.WithLabelValues("translation").Inc()
	return translated, nil
}

// generate wraps the provider call with latency tracking and error
// classification.
func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := a.generator.Generate(ctx, prompt, defaultTemperature, defaultMaxTokens)
	metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return out, nil
}

func (a *Assistant) userLock(userID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		a.userLocks[userID] = lock
	}
	return lock
}

func hasTranslateMarker(text string) bool {
	return strings.HasPrefix(strings.ToLower(text), translateMarker)
}

// parseLanguage extracts the target language from a "summarize in <language>"
// request and rejects anything that does not look like a language name.
func parseLanguage(text string) (string, error) {
	language := strings.TrimSpace(text[len(translateMarker):])
	if len([]rune(language)) < 2 {
		return "", fmt.Errorf("%w: specify a language, e.g. 'summarize in Spanish'", ErrInvalidInput)
	}
	for _, r := range language {
		if !unicode.IsLetter(r) && r != ' ' {
			return "", fmt.Errorf("%w: %q is not a language name", ErrInvalidInput, language)
		}
	}
	return language, nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "\n\n[... truncated ...]"
}
