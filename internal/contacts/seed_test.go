package contacts

import (
	"context"
	"testing"
)

func TestSeedPopulatesStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := Seed(ctx, store, "owner-1")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(created) != len(SampleDrafts()) {
		t.Fatalf("created %d contacts, want %d", len(created), len(SampleDrafts()))
	}
	for _, contact := range created {
		if contact.ID == "" {
			t.Errorf("seeded contact %q has no id", contact.Name)
		}
		if contact.Professions == nil || contact.Methods == nil || contact.Social == nil || contact.Comments == nil {
			t.Errorf("seeded contact %q has nil sequence fields", contact.Name)
		}
	}

	listed, err := store.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != len(created) {
		t.Errorf("listed %d contacts, want %d", len(listed), len(created))
	}
}

func TestSeedDataFiltersByProfession(t *testing.T) {
	store := openTestStore(t)
	created, err := Seed(context.Background(), store, "owner-1")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	// "developer" matches James Chen through free text only.
	matched := Filter(created, ModeProfession, "developer")
	if len(matched) != 1 || matched[0].Name != "James Chen" {
		t.Errorf("profession filter = %+v, want James Chen", matched)
	}
}
