package contacts

import "context"

// SampleDrafts returns a small set of realistic contact drafts, used to
// populate a fresh store for demos and tests.
func SampleDrafts() []Draft {
	return []Draft{
		{
			Name:        "Maria Garcia",
			DateOfBirth: "1988-03-21",
			WhenWeMet:   "College roommate's birthday party",
			School:      "UCLA",
			Professions: []string{"Doctor"},
			Methods: []Method{
				{Kind: MethodEmail, Value: "maria.garcia@example.com"},
			},
			Social: []SocialLink{
				{Platform: "linkedin", URL: "https://linkedin.com/in/mariagarcia"},
			},
		},
		{
			Name:           "James Chen",
			DateOfBirth:    "1992-11-02",
			WhenWeMet:      "Hackathon in 2019",
			ProfessionText: "freelance game developer",
			Methods: []Method{
				{Kind: MethodPhone, Value: "+1-555-0142"},
			},
		},
		{
			Name:        "Priya Patel",
			DateOfBirth: "1985-07-14",
			WhenWeMet:   "Former coworker",
			School:      "IIT Bombay",
			Professions: []string{"Engineer", "Teacher"},
		},
	}
}

// Seed creates the sample contacts for the owner and returns them as stored.
func Seed(ctx context.Context, store Store, ownerID string) ([]Contact, error) {
	drafts := SampleDrafts()
	created := make([]Contact, 0, len(drafts))
	for _, draft := range drafts {
		contact, err := store.Create(ctx, ownerID, draft)
		if err != nil {
			return created, err
		}
		created = append(created, contact)
	}
	return created, nil
}
