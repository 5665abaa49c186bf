// Package session holds the client-side working state of one authenticated
// session: the contact collection controller and the advisory autocomplete
// registries. A Collection is created on session establishment and torn down
// on logout; it is single-session state and not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rolohq/rolo/internal/contacts"
)

// Collection is the contact collection controller. The cache in all is
// advisory: authoritative only until the next successful store round trip.
// Every failure path leaves the cache exactly as the last known-good server
// response produced it.
type Collection struct {
	store    contacts.Store
	ownerID  string
	registry *Registry
	logger   *slog.Logger

	all      []contacts.Contact
	visible  []contacts.Contact
	mode     contacts.Mode
	query    string
	selected *contacts.Contact
}

// ErrNoSelection is returned by comment operations when no record is open.
var ErrNoSelection = errors.New("no contact selected")

// NewCollection creates a controller bound to one owner and one store backend.
func NewCollection(store contacts.Store, ownerID string, registry *Registry) *Collection {
	return &Collection{
		store:    store,
		ownerID:  ownerID,
		registry: registry,
		logger:   slog.Default().With(slog.String("component", "collection")),
		all:      []contacts.Contact{},
		visible:  []contacts.Contact{},
		mode:     contacts.ModeName,
	}
}

// Refresh replaces the cache with a fresh store fetch, normalized, and
// reapplies the current filter. On failure the previous cache stands.
func (c *Collection) Refresh(ctx context.Context) error {
	list, err := c.store.List(ctx, c.ownerID)
	if err != nil {
		return err
	}
	c.all = contacts.NormalizeAll(list)
	c.applyFilter()
	c.reselect()
	return nil
}

// Add validates the draft (fast-path, before any dispatch), creates the record
// remotely, and then re-fetches the whole collection rather than splicing the
// new record locally, so the cache matches server-assigned fields exactly.
func (c *Collection) Add(ctx context.Context, draft contacts.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	if _, err := c.store.Create(ctx, c.ownerID, draft); err != nil {
		return err
	}
	if c.registry != nil {
		changed := c.registry.NoteSchool(draft.School)
		for _, p := range draft.Professions {
			changed = c.registry.NoteProfession(p) || changed
		}
		if changed {
			if err := c.registry.Save(); err != nil {
				// Advisory data only. The contact is already persisted, so
				// the cache still has to catch up with the store.
				c.logger.Warn("registry save failed", slog.Any("error", err))
			}
		}
	}
	return c.Refresh(ctx)
}

// Update replaces the record remotely (full record, never a partial patch) and
// on success reconciles both views and any open record reference in place,
// without a re-fetch.
func (c *Collection) Update(ctx context.Context, record contacts.Contact) error {
	updated, err := c.store.Update(ctx, record.ID, record)
	if err != nil {
		return err
	}
	updated = contacts.Normalize(updated)
	replaceByID(c.all, updated)
	replaceByID(c.visible, updated)
	if c.selected != nil && c.selected.ID == updated.ID {
		clone := updated
		c.selected = &clone
	}
	return nil
}

// Delete removes the record remotely and from both views. A record the store
// already reports gone still comes out of local state (delete is idempotent
// from the caller's perspective), but a transport failure leaves local state
// untouched so cache and store cannot diverge.
func (c *Collection) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.ownerID, id); err != nil && !errors.Is(err, contacts.ErrNotFound) {
		return err
	}
	c.all = removeByID(c.all, id)
	c.visible = removeByID(c.visible, id)
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	return nil
}

// SetFilter sets the search mode and text and recomputes the visible view.
func (c *Collection) SetFilter(mode contacts.Mode, text string) {
	c.mode = mode
	c.query = text
	c.applyFilter()
}

// All returns the full cached collection.
func (c *Collection) All() []contacts.Contact {
	return c.all
}

// Visible returns the filtered view.
func (c *Collection) Visible() []contacts.Contact {
	return c.visible
}

// Select opens the record with the given id. Reports whether it was found.
func (c *Collection) Select(id string) bool {
	for _, record := range c.all {
		if record.ID == id {
			clone := record
			c.selected = &clone
			return true
		}
	}
	return false
}

// Selected returns the currently open record, if any.
func (c *Collection) Selected() (contacts.Contact, bool) {
	if c.selected == nil {
		return contacts.Contact{}, false
	}
	return *c.selected, true
}

// AddComment appends a dated comment to the open record and saves the full
// record.
func (c *Collection) AddComment(ctx context.Context, text string) error {
	record, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	record.Comments = append(record.Comments, contacts.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().Format(time.RFC3339),
	})
	return c.Update(ctx, record)
}

// RemoveComment deletes one comment from the open record and saves the full
// record.
func (c *Collection) RemoveComment(ctx context.Context, commentID string) error {
	record, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	kept := record.Comments[:0:0]
	for _, comment := range record.Comments {
		if comment.ID != commentID {
			kept = append(kept, comment)
		}
	}
	record.Comments = kept
	return c.Update(ctx, record)
}

// Close tears the session down: persists the advisory registry and drops the
// cached state.
func (c *Collection) Close() error {
	c.all = nil
	c.visible = nil
	c.selected = nil
	if c.registry != nil {
		return c.registry.Save()
	}
	return nil
}

func (c *Collection) applyFilter() {
	c.visible = contacts.Filter(c.all, c.mode, c.query)
}

// reselect repoints the open record at its refreshed copy, or clears it when
// the refresh no longer contains it.
func (c *Collection) reselect() {
	if c.selected == nil {
		return
	}
	id := c.selected.ID
	c.selected = nil
	c.Select(id)
}

func replaceByID(list []contacts.Contact, record contacts.Contact) {
	for i := range list {
		if list[i].ID == record.ID {
			list[i] = record
		}
	}
}

func removeByID(list []contacts.Contact, id string) []contacts.Contact {
	out := list[:0:0]
	for _, record := range list {
		if record.ID != id {
			out = append(out, record)
		}
	}
	return out
}
