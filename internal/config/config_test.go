package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("OWNER_PASSWORD", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.OwnerPassword != "" {
		t.Fatalf("expected empty OWNER_PASSWORD when unset, got %q", cfg.OwnerPassword)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SHOP_ID", "")
	t.Setenv("OUTBOX_PATH", "")
	t.Setenv("REPLAY_INTERVAL_SECONDS", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("S3_USE_PATH_STYLE", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ShopID != "main-shop" {
		t.Fatalf("expected default shop id, got %q", cfg.ShopID)
	}
	if cfg.OutboxPath != "outbox.db" {
		t.Fatalf("expected default outbox path, got %q", cfg.OutboxPath)
	}
	if cfg.ReplayIntervalSeconds != 15 {
		t.Fatalf("expected default replay interval 15, got %d", cfg.ReplayIntervalSeconds)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected default token ttl 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if !cfg.S3UsePathStyle {
		t.Fatalf("expected path style addressing by default")
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadRejectsInvalidNumericEnv(t *testing.T) {
	t.Setenv("REPLAY_INTERVAL_SECONDS", "-3")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "garbage")

	cfg := Load()
	if cfg.ReplayIntervalSeconds != 15 {
		t.Fatalf("expected fallback replay interval, got %d", cfg.ReplayIntervalSeconds)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected fallback token ttl, got %d", cfg.AccessTokenTTLMinutes)
	}
}
