package db

import (
	"path/filepath"
	"testing"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(Options{}); err == nil {
		t.Fatal("expected error when path is empty")
	}
}

func TestOpenAndClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	sqlDB, err := SQLDB(conn)
	if err != nil {
		t.Fatalf("SQLDB returned error: %v", err)
	}
	if pingErr := sqlDB.Ping(); pingErr != nil {
		t.Fatalf("ping failed: %v", pingErr)
	}

	if err := Close(conn); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestCloseNilIsNoop(t *testing.T) {
	t.Parallel()

	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) returned error: %v", err)
	}
}
