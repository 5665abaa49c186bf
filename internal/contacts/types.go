// Package contacts implements the contact record domain: the entity itself,
// draft validation, the array-default normalizer, the search filter, and the
// Store interface with its Postgres and local SQLite backends.
package contacts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Method is a way of reaching a contact (email or phone).
type Method struct {
	Kind  string `json:"type"`
	Value string `json:"value"`
}

// Method kinds.
const (
	MethodEmail = "email"
	MethodPhone = "phone"
)

// SocialLink is a social media profile attached to a contact.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Comment is a dated note attached to a contact. Comments are appended by the
// user and individually deletable; nothing else in the record keeps history.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"timestamp"`
}

// Contact is the sole domain entity: one person the owner knows.
// DateOfBirth is an ISO date string with no timezone semantics.
type Contact struct {
	ID             string       `json:"id"`
	OwnerID        string       `json:"userId,omitempty"`
	Name           string       `json:"name"`
	DateOfBirth    string       `json:"dateOfBirth"`
	WhenWeMet      string       `json:"whenWeMet"`
	School         string       `json:"school,omitempty"`
	ProfessionText string       `json:"professionText,omitempty"`
	Professions    []string     `json:"professions"`
	Methods        []Method     `json:"contacts"`
	Social         []SocialLink `json:"socialMedia"`
	Comments       []Comment    `json:"comments"`
	CreatedAt      time.Time    `json:"createdAt,omitzero"`
}

// Draft is a contact payload without an assigned identifier, submitted for
// creation. The store assigns the id and the creation timestamp.
type Draft struct {
	Name           string       `json:"name"`
	DateOfBirth    string       `json:"dateOfBirth"`
	WhenWeMet      string       `json:"whenWeMet"`
	School         string       `json:"school,omitempty"`
	ProfessionText string       `json:"professionText,omitempty"`
	Professions    []string     `json:"professions"`
	Methods        []Method     `json:"contacts"`
	Social         []SocialLink `json:"socialMedia"`
	Comments       []Comment    `json:"comments"`
}

// ErrInvalidDraft is returned when required draft fields are missing.
var ErrInvalidDraft = errors.New("invalid contact draft")

// Validate checks the required creation fields. It is applied both before
// dispatch (fast-path rejection) and again inside the store backends.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(d.DateOfBirth) == "" {
		missing = append(missing, "dateOfBirth")
	}
	if strings.TrimSpace(d.WhenWeMet) == "" {
		missing = append(missing, "whenWeMet")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDraft, strings.Join(missing, ", "))
	}
	return nil
}

// Record converts the draft into a contact without id or owner, with the
// array-default invariant already applied.
func (d Draft) Record() Contact {
	return Normalize(Contact{
		Name:           d.Name,
		DateOfBirth:    d.DateOfBirth,
		WhenWeMet:      d.WhenWeMet,
		School:         d.School,
		ProfessionText: d.ProfessionText,
		Professions:    d.Professions,
		Methods:        d.Methods,
		Social:         d.Social,
		Comments:       d.Comments,
	})
}
