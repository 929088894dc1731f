package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetQuoteValidityDays() != 15 {
		t.Fatalf("expected 15 validity days, got %d", cfg.GetQuoteValidityDays())
	}
	if cfg.GetInvoiceNetTermsDays() != 30 {
		t.Fatalf("expected 30 net terms days, got %d", cfg.GetInvoiceNetTermsDays())
	}
	if cfg.GetDefaultCurrency() != "USD" {
		t.Fatalf("expected USD, got %s", cfg.GetDefaultCurrency())
	}
	if !cfg.UsesMemoryStore() || cfg.UsesRedisNumbering() {
		t.Fatalf("unexpected driver selection: %+v", cfg)
	}
}

func TestFromEnvRequiresDatabaseForPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestFromEnvRejectsRedisNumberingWithoutRedis(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("NUMBERING_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}
}

func TestFromEnvRejectsBadValidity(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("QUOTE_VALIDITY_DAYS", "abc")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for non-numeric validity")
	}
}

func TestFromEnvAsynqConcurrency(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetAsynqConcurrency() != 10 {
		t.Fatalf("expected default concurrency 10, got %d", cfg.GetAsynqConcurrency())
	}

	t.Setenv("ASYNQ_CONCURRENCY", "4")
	cfg, err = FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetAsynqConcurrency() != 4 {
		t.Fatalf("expected concurrency 4, got %d", cfg.GetAsynqConcurrency())
	}
}
