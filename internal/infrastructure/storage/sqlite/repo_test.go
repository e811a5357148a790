package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepoUpsertLatestSpread(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertLatestSpread(ctx, "ETHUSDT-26DEC25", 25.0, 1.0, 1700000000000); err != nil {
		t.Fatalf("UpsertLatestSpread failed: %v", err)
	}

	// second write for the same symbol replaces, not duplicates
	if err := repo.UpsertLatestSpread(ctx, "ETHUSDT-26DEC25", 30.0, 1.2, 1700000005000); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	spread, spreadPct, err := repo.GetLatestSpread(ctx, "ETHUSDT-26DEC25")
	if err != nil {
		t.Fatalf("GetLatestSpread failed: %v", err)
	}
	if spread != 30.0 || spreadPct != 1.2 {
		t.Errorf("expected latest values 30.0/1.2, got %v/%v", spread, spreadPct)
	}
}

func TestSQLiteRepoInsertSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.InsertSnapshot(ctx, 1700000000000, `{"spreads":{}}`); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	if err := repo.InsertSnapshot(ctx, 1700000005000, `{"spreads":{}}`); err != nil {
		t.Fatalf("second InsertSnapshot failed: %v", err)
	}
}

func TestSQLiteRepoInsertAlert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.InsertAlert(ctx, 1700000000000, "ETHUSDT-26DEC25", "return_on_capital", 121.67, "")
	if err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}
}
