package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var dsnSeq atomic.Int64

// useSQLMock routes openDB to a fresh sqlmock connection per call.
func useSQLMock(t *testing.T, failFirst bool) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	prev := openDB
	openDB = func(_, _ string) (*sql.DB, error) {
		if calls.Add(1) == 1 && failFirst {
			return nil, driver.ErrBadConn
		}
		dsn := fmt.Sprintf("dbtest-%d", dsnSeq.Add(1))
		conn, _, err := sqlmock.NewWithDSN(dsn)
		return conn, err
	}
	t.Cleanup(func() { openDB = prev })
	return &calls
}

func resetShared(t *testing.T) {
	t.Helper()
	sharedMu.Lock()
	sharedDB = nil
	sharedOpening = false
	sharedMu.Unlock()
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", ServerOptions()); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
}

func TestSharedReusesConnection(t *testing.T) {
	calls := useSQLMock(t, false)
	resetShared(t)

	first, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil {
		t.Fatalf("Shared first: %v", err)
	}
	second, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil {
		t.Fatalf("Shared second: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same *sql.DB")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one open, got %d", calls.Load())
	}
}

func TestSharedRetriesAfterFailure(t *testing.T) {
	useSQLMock(t, true)
	resetShared(t)

	if _, err := Shared(context.Background(), "postgres://ignored", LambdaOptions()); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	conn, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if conn == nil {
		t.Fatalf("expected connection after retry")
	}
}

func TestWithEnvOverrides(t *testing.T) {
	useSQLMock(t, false)

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "nope")

	opts := WithEnvOverrides(ServerOptions())
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.PingTimeout != ServerOptions().PingTimeout {
		t.Fatalf("invalid duration should keep default, got %s", opts.PingTimeout)
	}

	conn, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Close()
	if got := conn.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestMigrateNilDatabase(t *testing.T) {
	if err := Migrate(context.Background(), nil); err != nil {
		t.Fatalf("expected nil database to be a no-op, got %v", err)
	}
}
