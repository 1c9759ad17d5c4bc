package backend

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"salesreport/internal/config"
	"salesreport/internal/core"
	applog "salesreport/internal/log"
)

func quietFactory() Factory {
	return NewFactory(applog.New(applog.Config{Writer: &bytes.Buffer{}}))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres", Config{Type: PostgresBackend, DatabaseURL: "postgres://localhost/db"}, false},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{
		DataBackend:  "postgres",
		DatabaseURL:  "postgres://db",
		AMQPURL:      "amqp://mq",
		AMQPExchange: "ex",
		AMQPQueue:    "q",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	want := Config{Type: PostgresBackend, DatabaseURL: "postgres://db", AMQPURL: "amqp://mq", AMQPExchange: "ex", AMQPQueue: "q"}
	if got != want {
		t.Errorf("FromAppConfig() = %+v, want %+v", got, want)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "sqlite" || got[1] != "postgres" || got[2] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func exercise(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	recs := []core.ProductRecord{
		core.NewProductRecord(1, "Phone", "Electronics", decimal.RequireFromString("99.99"), 3, 4.5, 10),
	}
	if err := b.ReplaceAll(ctx, recs); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	n, err := b.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count() = %d, %v", n, err)
	}

	if _, err := b.CreateUser(ctx, core.User{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u, err := b.GetUserByUsername(ctx, "alice")
	if err != nil || u.Username != "alice" {
		t.Fatalf("GetUserByUsername() = %+v, %v", u, err)
	}
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.Events != nil {
		t.Error("Events should be nil without AMQP config")
	}
	exercise(t, res.Backend)
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	exercise(t, res.Backend)

	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: "nope"}); err == nil {
		t.Error("expected error for invalid backend")
	}
}
