package contacts

import (
	"context"
	"errors"
)

// Store errors. Backends translate their native failures into these so the
// collection controller and handlers can react uniformly.
var (
	// ErrNotFound means the update/delete target does not exist.
	ErrNotFound = errors.New("contact not found")
	// ErrUnauthorized means no owner could be resolved for the request.
	ErrUnauthorized = errors.New("owner required")
	// ErrUnavailable means the backing medium could not be reached.
	ErrUnavailable = errors.New("contact store unavailable")
)

// Store is the persistence boundary for contact records. Two alternate
// backends implement it: PostgresStore (networked, shared) and LocalStore
// (single-device SQLite). They are deployment alternatives, never composed;
// callers hold the interface so either can be substituted, including in tests.
type Store interface {
	// List returns all contacts for the owner, ordered newest-created first.
	List(ctx context.Context, ownerID string) ([]Contact, error)
	// Create validates the draft, assigns an id, and persists the record.
	Create(ctx context.Context, ownerID string, draft Draft) (Contact, error)
	// Update replaces the whole record stored under id. There are no
	// partial-field-patch semantics; callers resubmit the full record.
	Update(ctx context.Context, id string, record Contact) (Contact, error)
	// Delete removes the owner's record with the given id. A record held by
	// a different owner is indistinguishable from a missing one.
	Delete(ctx context.Context, ownerID, id string) error
}
