package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"polopay_backend/internals/databases/dbtest"
	authModel "polopay_backend/internals/features/users/auth/model"
	authRepo "polopay_backend/internals/features/users/auth/repository"
)

func TestCleanupSessions(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Migrated(t)
	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	longAgo := now.Add(-72 * time.Hour)
	recently := now.Add(-time.Hour)

	sessions := map[string]*authModel.UserSessionModel{
		"live":           {UserSessionExpiresAt: now.Add(time.Hour)},
		"expired-old":    {UserSessionExpiresAt: longAgo},
		"expired-recent": {UserSessionExpiresAt: recently},
		"revoked-old":    {UserSessionExpiresAt: now.Add(time.Hour), UserSessionRevokedAt: &longAgo},
		"revoked-recent": {UserSessionExpiresAt: now.Add(time.Hour), UserSessionRevokedAt: &recently},
	}
	for name, s := range sessions {
		s.UserSessionUserID = uuid.New()
		s.UserSessionRole = "viewer"
		s.UserSessionUserAgent = name
		if err := authRepo.CreateSession(ctx, db, s); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	n, err := CleanupSessions(ctx, db, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	for _, name := range []string{"expired-old", "revoked-old"} {
		if _, err := authRepo.FindSessionByID(ctx, db, sessions[name].UserSessionID); err == nil {
			t.Errorf("%s should be gone", name)
		}
	}
	for _, name := range []string{"live", "expired-recent", "revoked-recent"} {
		if _, err := authRepo.FindSessionByID(ctx, db, sessions[name].UserSessionID); err != nil {
			t.Errorf("%s should remain: %v", name, err)
		}
	}
}

func TestStartSessionCleanupRejectsBadSpec(t *testing.T) {
	if _, err := StartSessionCleanup(nil, "not a spec", time.Hour); err == nil {
		t.Fatal("expected cron parse error")
	}
}
