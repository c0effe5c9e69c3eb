package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

// Backend keeps sessions in a process-local map. It loses everything on
// restart, so it is only suitable for development and tests.
type Backend struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func New() *Backend {
	return &Backend{sessions: make(map[string]models.Session)}
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) Save(ctx context.Context, sess models.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sess.UserID] = sess
	return nil
}

func (b *Backend) Load(ctx context.Context, userID string) (models.Session, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sess, ok := b.sessions[userID]
	return sess, ok, nil
}

func (b *Backend) Delete(ctx context.Context, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, userID)
	return nil
}

func (b *Backend) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, sess := range b.sessions {
		if sess.Expired(now) {
			delete(b.sessions, id)
			n++
		}
	}
	return n, nil
}
