package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// LocalStore is the single-device backend: contact records in a SQLite file
// with no network round trip and no owner isolation beyond a key namespace.
// Ids are timestamp-derived rather than database-assigned.
type LocalStore struct {
	db     *sql.DB
	lastID int64
}

// The namespace used when no owner is supplied (single-device mode has no
// authenticated user).
const localNamespace = "local"

const localSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contacts_owner_created_idx ON contacts (owner_id, created_at DESC);
`

// OpenLocalStore opens (creating if needed) the SQLite file at path.
func OpenLocalStore(path string) (*LocalStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("local store dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if _, err := conn.Exec(localSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &LocalStore{db: conn}, nil
}

// Close releases the underlying database handle.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// List implements Store.
func (s *LocalStore) List(ctx context.Context, ownerID string) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM contacts
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`, namespace(ownerID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	items := make([]Contact, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		var contact Contact
		if err := json.Unmarshal([]byte(payload), &contact); err != nil {
			return nil, fmt.Errorf("decode contact: %w", err)
		}
		items = append(items, Normalize(contact))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return items, nil
}

// Create implements Store.
func (s *LocalStore) Create(ctx context.Context, ownerID string, draft Draft) (Contact, error) {
	if err := draft.Validate(); err != nil {
		return Contact{}, err
	}
	// UTC also strips the monotonic reading so the value round-trips JSON
	// unchanged.
	now := time.Now().UTC()
	record := draft.Record()
	record.ID = s.nextID(now)
	record.OwnerID = ownerID
	record.CreatedAt = now

	payload, err := json.Marshal(record)
	if err != nil {
		return Contact{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, owner_id, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		record.ID, namespace(ownerID), string(payload), now.UnixMilli())
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return record, nil
}

// Update implements Store. The match is scoped to the namespace the incoming
// record's owner resolves to, so a record in another owner's namespace reads
// as missing.
func (s *LocalStore) Update(ctx context.Context, id string, record Contact) (Contact, error) {
	record = Normalize(record)
	record.ID = id
	payload, err := json.Marshal(record)
	if err != nil {
		return Contact{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET payload = ? WHERE id = ? AND owner_id = ?`,
		string(payload), id, namespace(record.OwnerID))
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if affected == 0 {
		return Contact{}, ErrNotFound
	}
	return record, nil
}

// Delete implements Store, scoped to the owner's namespace.
func (s *LocalStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND owner_id = ?`,
		id, namespace(ownerID))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// nextID derives an id from the wall clock, bumping past the previous one so
// two creates within the same millisecond stay unique.
func (s *LocalStore) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}

func namespace(ownerID string) string {
	if ownerID == "" {
		return localNamespace
	}
	return ownerID
}
