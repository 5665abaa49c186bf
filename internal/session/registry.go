package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultProfessions seeds the suggestion list on first use.
var DefaultProfessions = []string{"Engineer", "Doctor", "Teacher", "Designer", "Developer"}

// Registry holds the advisory autocomplete lists: every distinct profession
// tag and school name the user has entered. Non-authoritative and persisted
// independently of the contact store; losing it loses nothing but suggestions.
type Registry struct {
	path        string
	professions []string
	schools     []string
}

type registryFile struct {
	Professions []string `json:"professions"`
	Schools     []string `json:"schools"`
}

// OpenRegistry loads the registry file at path, seeding defaults when the
// file does not exist yet.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{
		path:        path,
		professions: append([]string(nil), DefaultProfessions...),
		schools:     []string{},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if file.Professions != nil {
		r.professions = file.Professions
	}
	if file.Schools != nil {
		r.schools = file.Schools
	}
	return r, nil
}

// NoteProfession records a profession tag, ignoring duplicates. Reports
// whether the list changed.
func (r *Registry) NoteProfession(profession string) bool {
	if profession == "" || contains(r.professions, profession) {
		return false
	}
	r.professions = append(r.professions, profession)
	return true
}

// NoteSchool records a school name, ignoring duplicates.
func (r *Registry) NoteSchool(school string) bool {
	if school == "" || contains(r.schools, school) {
		return false
	}
	r.schools = append(r.schools, school)
	return true
}

// Professions returns the suggestion list in insertion order.
func (r *Registry) Professions() []string {
	return append([]string(nil), r.professions...)
}

// Schools returns the suggestion list in insertion order.
func (r *Registry) Schools() []string {
	return append([]string(nil), r.schools...)
}

// Save writes the registry back to its file.
func (r *Registry) Save() error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("registry dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(registryFile{
		Professions: r.professions,
		Schools:     r.schools,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
