package session

import (
	"context"
	"errors"
	"io"
	"log"
	"reflect"
	"testing"
	"time"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

type backendStub struct {
	sessions map[string]models.Session
	saveErr  error
	loadErr  error
	loads    int
	saves    int
}

func newBackendStub() *backendStub {
	return &backendStub{sessions: make(map[string]models.Session)}
}

func (b *backendStub) Save(ctx context.Context, sess models.Session) error {
	b.saves++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.sessions[sess.UserID] = sess
	return nil
}

func (b *backendStub) Load(ctx context.Context, userID string) (models.Session, bool, error) {
	b.loads++
	if b.loadErr != nil {
		return models.Session{}, false, b.loadErr
	}
	sess, ok := b.sessions[userID]
	return sess, ok, nil
}

func (b *backendStub) Delete(ctx context.Context, userID string) error {
	delete(b.sessions, userID)
	return nil
}

func (b *backendStub) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for id, sess := range b.sessions {
		if sess.Expired(now) {
			delete(b.sessions, id)
			n++
		}
	}
	return n, nil
}

func newTestStore(backend Backend, ttl time.Duration) (*Store, *time.Time) {
	st := NewStore(backend, ttl, log.New(io.Discard, "", 0))
	now := time.Unix(1700000000, 0)
	st.now = func() time.Time { return now }
	return st, &now
}

func TestPutGet(t *testing.T) {
	backend := newBackendStub()
	st, _ := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "u1", "https://youtu.be/abc", "a summary", []string{"s1", "s2"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	sess, ok, err := st.Get(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if sess.Summary != "a summary" || !reflect.DeepEqual(sess.Segments, []string{"s1", "s2"}) {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.ExpiresAt.Sub(sess.UpdatedAt) != time.Hour {
		t.Errorf("expiry should be updatedAt + ttl, got %v", sess.ExpiresAt.Sub(sess.UpdatedAt))
	}
}

func TestGet_ReadThroughCache(t *testing.T) {
	backend := newBackendStub()
	st, _ := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "u1", "ref", "sum", []string{"s"}); err != nil {
		t.Fatal(err)
	}

	// fresh store over the same backend: first read hits the backend,
	// later reads are served from the cache
	st2, _ := newTestStore(backend, time.Hour)
	for i := 0; i < 3; i++ {
		if _, ok, err := st2.Get(ctx, "u1"); !ok || err != nil {
			t.Fatalf("get %d: ok=%v err=%v", i, ok, err)
		}
	}
	if backend.loads != 1 {
		t.Errorf("expected exactly 1 backend load, got %d", backend.loads)
	}
}

func TestGet_Expiration(t *testing.T) {
	backend := newBackendStub()
	st, now := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "u1", "ref", "sum", []string{"s"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(time.Hour + time.Second)
	if _, ok, err := st.Get(ctx, "u1"); ok || err != nil {
		t.Errorf("expired session should be absent, ok=%v err=%v", ok, err)
	}
}

func TestPut_WholesaleOverwrite(t *testing.T) {
	backend := newBackendStub()
	st, _ := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "u1", "ref1", "first", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, "u1", "ref2", "second", []string{"c"}); err != nil {
		t.Fatal(err)
	}

	sess, ok, _ := st.Get(ctx, "u1")
	if !ok {
		t.Fatal("session missing after overwrite")
	}
	if sess.Summary != "second" || !reflect.DeepEqual(sess.Segments, []string{"c"}) {
		t.Errorf("old data leaked into overwrite: %+v", sess)
	}
	if len(backend.sessions) != 1 {
		t.Errorf("expected exactly one record, got %d", len(backend.sessions))
	}
}

func TestPut_BackendFailureNotCached(t *testing.T) {
	backend := newBackendStub()
	backend.saveErr = errors.New("disk full")
	st, _ := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "u1", "ref", "sum", []string{"s"}); err == nil {
		t.Fatal("put must surface the durable write failure")
	}
	// a failed put must not leave a phantom cached session
	backend.saveErr = nil
	if _, ok, _ := st.Get(ctx, "u1"); ok {
		t.Error("failed put should not be readable from the cache")
	}
}

func TestDelete_Idempotent(t *testing.T) {
	backend := newBackendStub()
	st, _ := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Delete(ctx, "nobody"); err != nil {
		t.Fatalf("deleting a missing session should not fail: %v", err)
	}

	if err := st.Put(ctx, "u1", "ref", "sum", []string{"s"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := st.Get(ctx, "u1"); ok {
		t.Error("session should be gone after delete")
	}
	if err := st.Delete(ctx, "u1"); err != nil {
		t.Errorf("second delete should be a no-op: %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	backend := newBackendStub()
	st, now := newTestStore(backend, time.Hour)
	ctx := context.Background()

	if err := st.Put(ctx, "old", "ref", "sum", []string{"s"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(30 * time.Minute)
	if err := st.Put(ctx, "fresh", "ref", "sum", []string{"s"}); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(45 * time.Minute) // old is past its hour, fresh is not

	n, err := st.SweepExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
	if _, ok, _ := st.Get(ctx, "fresh"); !ok {
		t.Error("fresh session must survive the sweep")
	}
}
