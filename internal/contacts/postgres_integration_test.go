package contacts_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolohq/rolo/internal/contacts"
)

// Requires a migrated database and TEST_POSTGRES_DSN; skipped otherwise.
func setupPostgresStore(t *testing.T) (*pgxpool.Pool, *contacts.PostgresStore) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}
	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return pool, contacts.NewPostgresStore(logger, pool)
}

func createTestOwner(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES (gen_random_uuid() || '@integration.test', 'Integration Owner', 'x')
		RETURNING id::text`).Scan(&id)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	pool, store := setupPostgresStore(t)
	ctx := context.Background()
	owner := createTestOwner(ctx, t, pool)

	created, err := store.Create(ctx, owner, contacts.Draft{
		Name:        "Alice Smith",
		DateOfBirth: "1990-04-01",
		WhenWeMet:   "college",
		School:      "MIT",
		Professions: []string{"Engineer"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create assigned no id")
	}
	if created.Comments == nil || created.Social == nil || created.Methods == nil {
		t.Error("created record has nil sequences")
	}

	list, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("List = %d records, want exactly the created one", len(list))
	}

	created.Name = "Alice Cooper"
	updated, err := store.Update(ctx, created.ID, created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Alice Cooper" {
		t.Errorf("updated Name = %q", updated.Name)
	}

	if err := store.Delete(ctx, owner, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, owner, created.ID); !errors.Is(err, contacts.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}

	list, err = store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List after delete = %d records, want 0", len(list))
	}
}

func TestPostgresStoreOwnerScoping(t *testing.T) {
	pool, store := setupPostgresStore(t)
	ctx := context.Background()
	owner := createTestOwner(ctx, t, pool)
	other := createTestOwner(ctx, t, pool)

	created, err := store.Create(ctx, owner, contacts.Draft{
		Name: "Private", DateOfBirth: "1990-01-01", WhenWeMet: "work",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := store.List(ctx, other)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, c := range list {
		if c.ID == created.ID {
			t.Error("record visible across owners")
		}
	}

	// Owner-scoped update: a record carrying the wrong owner must not match.
	created.OwnerID = other
	if _, err := store.Update(ctx, created.ID, created); !errors.Is(err, contacts.ErrNotFound) {
		t.Errorf("cross-owner Update error = %v, want ErrNotFound", err)
	}

	// Owner-scoped delete likewise.
	if err := store.Delete(ctx, other, created.ID); !errors.Is(err, contacts.ErrNotFound) {
		t.Errorf("cross-owner Delete error = %v, want ErrNotFound", err)
	}
}
