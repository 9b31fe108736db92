package quillpost

import (
	"context"
	"errors"
	"testing"

	"github.com/quillpost/quillpost/password"
)

func TestCreateAccountThenLogin(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	ctx := context.Background()

	u, err := engine.CreateAccount(ctx, "bob", "hunter2")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if u.ID == 0 || u.Login != "bob" {
		t.Fatalf("unexpected record %+v", u)
	}
	if u.PasswordHash != password.Digest("hunter2") {
		t.Fatalf("expected sha256 verifier, got %q", u.PasswordHash)
	}
	if users.createCalls != 1 {
		t.Fatalf("expected one create call, got %d", users.createCalls)
	}

	if _, err := engine.Login(ctx, "bob", "hunter2"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestCreateAccountDuplicateLogin(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.CreateAccount(context.Background(), "alice", "x")
	if !errors.Is(err, ErrLoginTaken) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrLoginTaken, got %v", err)
	}
	if got := engine.MetricsSnapshot().Counters[MetricAccountDuplicate]; got != 1 {
		t.Fatalf("expected one duplicate, got %d", got)
	}
}

func TestCreateAccountBlankLogin(t *testing.T) {
	engine, users, _ := newTestEngine(t)

	if _, err := engine.CreateAccount(context.Background(), "  ", "x"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if users.createCalls != 0 {
		t.Fatal("blank login reached the user store")
	}
}

func TestChangePassword(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	token, err := engine.Login(ctx, "alice", "1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := engine.ChangePassword(ctx, 1, "wrong", "5678"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := engine.ChangePassword(ctx, 1, "1234", "5678"); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if _, err := engine.Login(ctx, "alice", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "5678"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	// existing sessions survive a password change
	if _, err := engine.Authenticate(ctx, token); err != nil {
		t.Fatalf("session revoked by password change: %v", err)
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	err := engine.ChangePassword(context.Background(), 99, "1234", "5678")
	if !errors.Is(err, ErrUserNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePasswordStoreFailure(t *testing.T) {
	engine, users, _ := newTestEngine(t)
	users.updateErr = errors.New("disk full")

	err := engine.ChangePassword(context.Background(), 1, "1234", "5678")
	if !errors.Is(err, ErrInfrastructure) {
		t.Fatalf("expected ErrInfrastructure, got %v", err)
	}
}
