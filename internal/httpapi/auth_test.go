package httpapi

import (
	"strings"
	"testing"
	"time"

	"bukustok/backend/internal/domain"
)

func newTestAuth() *AuthManager {
	return NewAuthManager("test-secret-key", time.Hour, "admin", "admin123")
}

func TestAuthManagerLoginAndParse(t *testing.T) {
	auth := newTestAuth()

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != "admin" {
		t.Fatalf("expected admin role, got %q", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestAuthManagerRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth()

	if _, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "wrong"}); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if _, err := auth.Login(domain.LoginRequest{Username: "ghost", Password: "admin123"}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestAuthManagerRejectsTamperedToken(t *testing.T) {
	auth := newTestAuth()

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tampered := resp.AccessToken[:len(resp.AccessToken)-2] + "xx"
	if _, err := auth.ParseToken(tampered); err == nil {
		t.Fatalf("expected error for tampered token")
	}

	other := NewAuthManager("different-secret", time.Hour, "admin", "admin123")
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}

func TestAuthManagerRejectsExpiredToken(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, "admin", "admin123")

	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestCreateAccountValidation(t *testing.T) {
	auth := newTestAuth()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "password1"},
		{"username with space", "bad user", "password1"},
		{"short password", "counter", "123"},
		{"blank password", "counter", "   "},
	}
	for _, tc := range cases {
		if _, err := auth.CreateAccount(domain.RegisterAccountRequest{Username: tc.username, Password: tc.password}); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	actor, err := auth.CreateAccount(domain.RegisterAccountRequest{Username: "Counter", Password: "password1"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if actor.Username != "counter" || actor.Role != "staff" {
		t.Fatalf("unexpected actor %+v", actor)
	}

	if _, err := auth.CreateAccount(domain.RegisterAccountRequest{Username: "counter", Password: "password1"}); err == nil {
		t.Fatalf("expected duplicate username error")
	}

	if _, err := auth.Login(domain.LoginRequest{Username: "counter", Password: "password1"}); err != nil {
		t.Fatalf("staff login: %v", err)
	}
}

func TestListStaffExcludesOwner(t *testing.T) {
	auth := newTestAuth()

	if _, err := auth.CreateAccount(domain.RegisterAccountRequest{Username: "zara", Password: "password1"}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := auth.CreateAccount(domain.RegisterAccountRequest{Username: "amit", Password: "password1"}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	staff := auth.ListStaff()
	if strings.Join(staff, ",") != "amit,zara" {
		t.Fatalf("unexpected staff list %v", staff)
	}
}

func TestPasswordHashHelpers(t *testing.T) {
	hash, err := hashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !isPasswordHash(hash) {
		t.Fatalf("generated hash not recognized: %q", hash)
	}
	if !verifyPassword(hash, "secret-pass") {
		t.Fatalf("valid password rejected")
	}
	if verifyPassword(hash, "other") {
		t.Fatalf("wrong password accepted")
	}
	if verifyPassword("plaintext", "plaintext") {
		t.Fatalf("plaintext stored value accepted")
	}
}
