package session

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestRegistrySeedsDefaults(t *testing.T) {
	r, err := OpenRegistry(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("OpenRegistry: %v", err)
	}
	if !reflect.DeepEqual(r.Professions(), DefaultProfessions) {
		t.Errorf("Professions = %v, want defaults", r.Professions())
	}
	if len(r.Schools()) != 0 {
		t.Errorf("Schools = %v, want empty", r.Schools())
	}
}

func TestRegistryDeduplicates(t *testing.T) {
	r, err := OpenRegistry(filepath.Join(t.TempDir(), "registry.json"))
	if err != nil {
		t.Fatalf("OpenRegistry: %v", err)
	}
	if !r.NoteSchool("MIT") {
		t.Error("first NoteSchool should report a change")
	}
	if r.NoteSchool("MIT") {
		t.Error("duplicate NoteSchool should be a no-op")
	}
	if r.NoteProfession("Engineer") {
		t.Error("seeded profession should be a no-op")
	}
	if !r.NoteProfession("Astronaut") {
		t.Error("new profession should report a change")
	}
	if r.NoteSchool("") || r.NoteProfession("") {
		t.Error("empty values must be ignored")
	}
}

func TestRegistryPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	r, err := OpenRegistry(path)
	if err != nil {
		t.Fatalf("OpenRegistry: %v", err)
	}
	r.NoteSchool("MIT")
	r.NoteSchool("Stanford")
	r.NoteProfession("Astronaut")
	if err := r.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := OpenRegistry(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Schools(), []string{"MIT", "Stanford"}) {
		t.Errorf("Schools = %v after reload", reloaded.Schools())
	}
	if !contains(reloaded.Professions(), "Astronaut") {
		t.Errorf("Professions = %v, missing Astronaut", reloaded.Professions())
	}
}
