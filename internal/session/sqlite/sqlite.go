package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

// Backend persists sessions in a local SQLite file. The schema is created on
// open, so the backend works without any external setup.
type Backend struct {
	db *sql.DB
}

// Open creates the parent directory if needed, opens the database in WAL mode
// and ensures the user_sessions table exists.
func Open(path string) (*Backend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS user_sessions (
            user_id    TEXT PRIMARY KEY,
            source_ref TEXT NOT NULL,
            summary    TEXT NOT NULL,
            segments   TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL,
            expires_at TIMESTAMP NOT NULL
        )`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Backend{db: db}, nil
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) Save(ctx context.Context, sess models.Session) error {
	segments, err := json.Marshal(sess.Segments)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO user_sessions
            (user_id, source_ref, summary, segments, created_at, updated_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.UserID, sess.SourceRef, sess.Summary, string(segments),
		sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt)
	return err
}

func (b *Backend) Load(ctx context.Context, userID string) (models.Session, bool, error) {
	var (
		sess     models.Session
		segments string
	)
	err := b.db.QueryRowContext(ctx, `
        SELECT user_id, source_ref, summary, segments, created_at, updated_at, expires_at
        FROM user_sessions WHERE user_id = ?`, userID).
		Scan(&sess.UserID, &sess.SourceRef, &sess.Summary, &segments,
			&sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, err
	}
	if err := json.Unmarshal([]byte(segments), &sess.Segments); err != nil {
		return models.Session{}, false, err
	}
	return sess, true, nil
}

func (b *Backend) Delete(ctx context.Context, userID string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = ?`, userID)
	return err
}

func (b *Backend) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (b *Backend) Close() error {
	return b.db.Close()
}
