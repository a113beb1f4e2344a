package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewStore(client, "fcs", time.Hour), mr, func() { mr.Close() }
}

func TestGetUnknownSession(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	if _, err := store.Get(context.Background(), "nosuch"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBeginVerificationCreatesSession(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	sess, err := store.BeginVerification(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("BeginVerification failed: %v", err)
	}
	if !sess.PendingVerification || sess.IdentityID != "u1" || sess.VerifyAttempts != 0 {
		t.Fatalf("unexpected session state: %+v", sess)
	}

	loaded, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded.PendingVerification || loaded.IdentityID != "u1" {
		t.Fatalf("persisted state mismatch: %+v", loaded)
	}
}

func TestRecordVerifyFailureOnMissingSession(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	if _, err := store.RecordVerifyFailure(context.Background(), "nosuch"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestVerificationLifecycle(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	if _, err := store.BeginVerification(ctx, "s1", "u1"); err != nil {
		t.Fatalf("BeginVerification failed: %v", err)
	}

	for i := 1; i <= 2; i++ {
		sess, err := store.RecordVerifyFailure(ctx, "s1")
		if err != nil {
			t.Fatalf("RecordVerifyFailure failed: %v", err)
		}
		if int(sess.VerifyAttempts) != i {
			t.Fatalf("expected %d attempts, got %d", i, sess.VerifyAttempts)
		}
	}

	sess, err := store.CompleteVerification(ctx, "s1")
	if err != nil {
		t.Fatalf("CompleteVerification failed: %v", err)
	}
	if sess.PendingVerification || !sess.Verified || sess.VerifyAttempts != 0 {
		t.Fatalf("unexpected completed state: %+v", sess)
	}
}

func TestAbortVerificationLeavesUnverified(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	if _, err := store.BeginVerification(ctx, "s1", "u1"); err != nil {
		t.Fatalf("BeginVerification failed: %v", err)
	}

	sess, err := store.AbortVerification(ctx, "s1")
	if err != nil {
		t.Fatalf("AbortVerification failed: %v", err)
	}
	if sess.PendingVerification || sess.Verified {
		t.Fatalf("expected cleared, unverified state: %+v", sess)
	}
}

func TestIncrementLoginAttemptWindowReset(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	window := 100 * time.Millisecond

	for i := 1; i <= 3; i++ {
		sess, err := store.IncrementLoginAttempt(ctx, "s1", window)
		if err != nil {
			t.Fatalf("IncrementLoginAttempt failed: %v", err)
		}
		if int(sess.LoginAttempts) != i {
			t.Fatalf("expected %d attempts, got %d", i, sess.LoginAttempts)
		}
	}

	time.Sleep(150 * time.Millisecond)

	sess, err := store.IncrementLoginAttempt(ctx, "s1", window)
	if err != nil {
		t.Fatalf("IncrementLoginAttempt failed: %v", err)
	}
	if sess.LoginAttempts != 1 {
		t.Fatalf("expected counter reset after window, got %d", sess.LoginAttempts)
	}
}

func TestIncrementLoginAttemptConcurrent(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementLoginAttempt(ctx, "s1", time.Minute); err != nil {
				t.Errorf("IncrementLoginAttempt failed: %v", err)
			}
		}()
	}
	wg.Wait()

	sess, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if int(sess.LoginAttempts) != workers {
		t.Fatalf("expected %d attempts after concurrent increments, got %d", workers, sess.LoginAttempts)
	}
}

func TestMarkAuthenticatedResetsCounters(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	if _, err := store.BeginVerification(ctx, "s1", "u1"); err != nil {
		t.Fatalf("BeginVerification failed: %v", err)
	}
	if _, err := store.RecordVerifyFailure(ctx, "s1"); err != nil {
		t.Fatalf("RecordVerifyFailure failed: %v", err)
	}
	if _, err := store.IncrementLoginAttempt(ctx, "s1", time.Minute); err != nil {
		t.Fatalf("IncrementLoginAttempt failed: %v", err)
	}

	sess, err := store.MarkAuthenticated(ctx, "s1", "u2")
	if err != nil {
		t.Fatalf("MarkAuthenticated failed: %v", err)
	}
	if sess.IdentityID != "u2" || !sess.Verified || sess.PendingVerification {
		t.Fatalf("unexpected authenticated state: %+v", sess)
	}
	if sess.VerifyAttempts != 0 || sess.LoginAttempts != 0 || sess.LastLoginAttempt != 0 {
		t.Fatalf("expected counters reset, got %+v", sess)
	}
}

func TestExpiredSessionIsNotFound(t *testing.T) {
	store, mr, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	now := time.Now()
	sess := &Session{
		SessionID: "s1",
		CreatedAt: now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	}
	// Write directly so the TTL floor does not apply.
	encoded, err := Encode(sess)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	mr.Set("fcs:s1", string(encoded))

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	if _, err := store.BeginVerification(ctx, "s1", "u1"); err != nil {
		t.Fatalf("BeginVerification failed: %v", err)
	}

	existed, err := store.Delete(ctx, "s1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !existed {
		t.Fatal("expected Delete to report an existing record")
	}

	existed, err = store.Delete(ctx, "s1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if existed {
		t.Fatal("expected second Delete to report no record")
	}
}

func TestCorruptSessionBlob(t *testing.T) {
	store, mr, done := newTestStore(t)
	defer done()

	mr.Set("fcs:s1", "not a session")

	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrSessionCorrupt) {
		t.Fatalf("expected ErrSessionCorrupt, got %v", err)
	}
}
