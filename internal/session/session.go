package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

// DefaultTTL is how long a processed video stays available to a user.
const DefaultTTL = 24 * time.Hour

// Backend is the durable side of the session store: persistent keyed storage
// with upsert, point lookup, delete and an expiration instant per record.
type Backend interface {
	Save(ctx context.Context, sess models.Session) error
	Load(ctx context.Context, userID string) (models.Session, bool, error)
	Delete(ctx context.Context, userID string) error
	// SweepExpired removes records whose expiry predates now and reports how
	// many were removed. Implementations whose storage expires keys natively
	// may report zero.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Store layers a fast in-process cache over a durable backend. Reads populate
// the cache so repeated lookups in the same process skip the backend; writes
// go to the backend synchronously and only update the cache on success, so a
// reported success always means a durable copy exists.
type Store struct {
	backend Backend
	ttl     time.Duration
	logger  *log.Logger

	mu    sync.RWMutex
	cache map[string]models.Session

	now func() time.Time
}

// NewStore wires a cache in front of the given durable backend.
func NewStore(backend Backend, ttl time.Duration, logger *log.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	}
	return &Store{
		backend: backend,
		ttl:     ttl,
		logger:  logger,
		cache:   make(map[string]models.Session),
		now:     time.Now,
	}
}

// Put replaces any existing session for the user wholesale and stamps fresh
// timestamps. The durable write happens before Put reports success; on
// failure the cache is left untouched so the store never claims durability it
// does not have.
func (s *Store) Put(ctx context.Context, userID, sourceRef, summary string, segments []string) error {
	now := s.now()
	sess := models.Session{
		UserID:    userID,
		SourceRef: sourceRef,
		Summary:   summary,
		Segments:  segments,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.backend.Save(ctx, sess); err != nil {
		return fmt.Errorf("session: save user %s: %w", userID, err)
	}

	s.mu.Lock()
	s.cache[userID] = sess
	s.mu.Unlock()
	return nil
}

// Get returns the live session for the user, if any. Expired records are
// logically absent even when still physically stored. A backend hit refreshes
// the in-process cache.
func (s *Store) Get(ctx context.Context, userID string) (models.Session, bool, error) {
	now := s.now()

	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok {
		if cached.Expired(now) {
			s.mu.Lock()
			delete(s.cache, userID)
			s.mu.Unlock()
			return models.Session{}, false, nil
		}
		return cached, true, nil
	}

	sess, found, err := s.backend.Load(ctx, userID)
	if err != nil {
		s.logger.Printf("load user %s failed: %v", userID, err)
		return models.Session{}, false, fmt.Errorf("session: load user %s: %w", userID, err)
	}
	if !found || sess.Expired(now) {
		return models.Session{}, false, nil
	}

	s.mu.Lock()
	s.cache[userID] = sess
	s.mu.Unlock()
	return sess, true, nil
}

// Delete removes the session from the cache and the backend. Deleting a user
// with no session is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.cache, userID)
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, userID); err != nil {
		return fmt.Errorf("session: delete user %s: %w", userID, err)
	}
	return nil
}

// SweepExpired prunes expired records from the backend and the cache. Records
// written after the sweep started keep their fresh expiry and survive.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	for id, sess := range s.cache {
		if sess.Expired(now) {
			delete(s.cache, id)
		}
	}
	s.mu.Unlock()

	n, err := s.backend.SweepExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("session: sweep: %w", err)
	}
	return n, nil
}
