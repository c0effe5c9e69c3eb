package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

// Backend persists sessions in a user_sessions table. The schema lives in
// migrations/ and is applied with the migrate command.
type Backend struct {
	DB *sql.DB
}

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Backend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Backend{DB: db}, nil
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) Save(ctx context.Context, sess models.Session) error {
	segments, err := json.Marshal(sess.Segments)
	if err != nil {
		return err
	}
	_, err = b.DB.ExecContext(ctx, `
        INSERT INTO user_sessions (user_id, source_ref, summary, segments, created_at, updated_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id) DO UPDATE SET
            source_ref = EXCLUDED.source_ref,
            summary    = EXCLUDED.summary,
            segments   = EXCLUDED.segments,
            created_at = EXCLUDED.created_at,
            updated_at = EXCLUDED.updated_at,
            expires_at = EXCLUDED.expires_at`,
		sess.UserID, sess.SourceRef, sess.Summary, string(segments),
		sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt)
	return err
}

func (b *Backend) Load(ctx context.Context, userID string) (models.Session, bool, error) {
	var (
		sess     models.Session
		segments string
	)
	err := b.DB.QueryRowContext(ctx, `
        SELECT user_id, source_ref, summary, segments, created_at, updated_at, expires_at
        FROM user_sessions WHERE user_id = $1`, userID).
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
	_, err := b.DB.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	return err
}

func (b *Backend) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := b.DB.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (b *Backend) Close() error {
	return b.DB.Close()
}
