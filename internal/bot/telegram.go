package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/assistant"
)

const defaultAPIBase = "https://api.telegram.org"

// pollTimeout is the long-poll duration requested from Telegram.
const pollTimeout = 50 * time.Second

// Update is the subset of Telegram's update object the bot cares about.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
		} `json:"from"`
	} `json:"message"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
}

// Bot long-polls the Telegram Bot API and feeds messages through the
// assistant. Each user gets a dedicated worker goroutine fed by an ordered
// channel, so one user's messages are handled in delivery order while
// different users proceed concurrently.
type Bot struct {
	token      string
	apiBase    string
	httpClient *http.Client
	assist     *assistant.Assistant
	logger     *log.Logger

	mu      sync.Mutex
	inboxes map[int64]chan Update
	wg      sync.WaitGroup
}

func New(token string, assist *assistant.Assistant, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(log.Writer(), "[BOT] ", log.LstdFlags)
	}
	return &Bot{
		token:   token,
		apiBase: defaultAPIBase,
		// client timeout must exceed the long-poll window
		httpClient: &http.Client{Timeout: pollTimeout + 10*time.Second},
		assist:     assist,
		logger:     logger,
		inboxes:    make(map[int64]chan Update),
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// handlers to drain.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Printf("starting long-poll loop")
	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.closeInboxes()
			b.wg.Wait()
			return ctx.Err()
		default:
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			b.logger.Printf("getUpdates failed: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.dispatch(ctx, u)
		}
	}
}

// dispatch routes the update to its user's ordered inbox, starting a worker
// on first contact.
func (b *Bot) dispatch(ctx context.Context, u Update) {
	userID := u.Message.From.ID

	b.mu.Lock()
	inbox, ok := b.inboxes[userID]
	if !ok {
		inbox = make(chan Update, 16)
		b.inboxes[userID] = inbox
		b.wg.Add(1)
		go b.worker(ctx, inbox)
	}
	b.mu.Unlock()

	select {
	case inbox <- u:
	case <-ctx.Done():
	}
}

func (b *Bot) worker(ctx context.Context, inbox <-chan Update) {
	defer b.wg.Done()
	for u := range inbox {
		b.handle(ctx, u)
	}
}

func (b *Bot) closeInboxes() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, inbox := range b.inboxes {
		close(inbox)
		delete(b.inboxes, id)
	}
}

func (b *Bot) handle(ctx context.Context, u Update) {
	userID := strconv.FormatInt(u.Message.From.ID, 10)
	b.logger.Printf("message from %s (ID: %s)", u.Message.From.FirstName, userID)

	reply, err := b.assist.HandleMessage(ctx, userID, u.Message.Text)
	if err != nil {
		b.logger.Printf("handling failed for user %s: %v", userID, err)
		reply = assistant.UserMessage(err)
	}
	if sendErr := b.sendMessage(ctx, u.Message.Chat.ID, reply); sendErr != nil {
		b.logger.Printf("sendMessage failed for chat %d: %v", u.Message.Chat.ID, sendErr)
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]Update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?timeout=%d&offset=%d",
		b.apiBase, b.token, int(pollTimeout.Seconds()), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram API error: %s", out.Description)
	}
	return out.Result, nil
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", b.apiBase, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
	}
	return nil
}
