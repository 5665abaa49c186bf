package contacts

// Normalize guarantees the array-default invariant: professions, contact
// methods, social links, and comments are never nil once a record leaves the
// normalizer. All other fields pass through unchanged. Pure and total; it is
// applied to every record entering client memory from a store.
func Normalize(c Contact) Contact {
	if c.Professions == nil {
		c.Professions = []string{}
	}
	if c.Methods == nil {
		c.Methods = []Method{}
	}
	if c.Social == nil {
		c.Social = []SocialLink{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return c
}

// NormalizeAll applies Normalize to every record of a fetched collection.
func NormalizeAll(list []Contact) []Contact {
	out := make([]Contact, len(list))
	for i, c := range list {
		out[i] = Normalize(c)
	}
	return out
}
