package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	profiles := NewProfileRepository(db)
	sessions := NewSessionRepository(db)

	if err := profiles.CreateProfile(ctx, testProfile("user-1", "maria@example.com")); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	session := persistence.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Token:     "token-abc",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
	if _, err := sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := sessions.GetSession(ctx, "token-abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.UserID != "user-1" || loaded.RevokedAt != nil {
		t.Errorf("unexpected session: %+v", loaded)
	}

	revoked, err := sessions.RevokeSession(ctx, "token-abc", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("revoked session should carry a revocation time")
	}
	if _, err := sessions.RevokeSession(ctx, "token-abc", now.Add(2*time.Hour)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("double revoke = %v, want ErrNotFound", err)
	}
}

func TestSessionForeignKeyEnforced(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionRepository(newTestDB(t))

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	_, err := sessions.CreateSession(ctx, persistence.Session{
		ID: "sess-1", UserID: "missing", Token: "token-abc",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("err = %v, want ErrForeignKeyViolation", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	profiles := NewProfileRepository(db)
	sessions := NewSessionRepository(db)

	if err := profiles.CreateProfile(ctx, testProfile("user-1", "maria@example.com")); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	stale := persistence.Session{
		ID: "sess-old", UserID: "user-1", Token: "token-old",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-25 * time.Hour),
	}
	fresh := persistence.Session{
		ID: "sess-new", UserID: "user-1", Token: "token-new",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	for _, session := range []persistence.Session{stale, fresh} {
		if _, err := sessions.CreateSession(ctx, session); err != nil {
			t.Fatalf("seed %s: %v", session.ID, err)
		}
	}

	if err := sessions.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if _, err := sessions.GetSession(ctx, "token-old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("stale session survived: %v", err)
	}
	if _, err := sessions.GetSession(ctx, "token-new"); err != nil {
		t.Fatalf("fresh session removed: %v", err)
	}
}
