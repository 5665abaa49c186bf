package contacts

import "strings"

// Mode selects which field a search query matches against.
type Mode string

// Search modes.
const (
	ModeName        Mode = "name"
	ModeDateOfBirth Mode = "dateOfBirth"
	ModeSchool      Mode = "school"
	ModeProfession  Mode = "profession"
)

// Filter returns the records of list matching text under the given mode.
// An empty query is the identity filter. Matching rules:
//
//	name        case-insensitive substring on Name
//	dateOfBirth exact equality against the stored ISO date string
//	school      case-insensitive substring on School; records without a
//	            school never match a non-empty query
//	profession  case-insensitive substring against any profession tag, or
//	            against ProfessionText
//
// Result order is the input order; no re-sorting by relevance.
func Filter(list []Contact, mode Mode, text string) []Contact {
	if text == "" {
		return list
	}
	needle := strings.ToLower(text)
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if matches(c, mode, needle, text) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Contact, mode Mode, needle, raw string) bool {
	switch mode {
	case ModeName:
		return strings.Contains(strings.ToLower(c.Name), needle)
	case ModeDateOfBirth:
		return c.DateOfBirth == raw
	case ModeSchool:
		if c.School == "" {
			return false
		}
		return strings.Contains(strings.ToLower(c.School), needle)
	case ModeProfession:
		for _, p := range c.Professions {
			if strings.Contains(strings.ToLower(p), needle) {
				return true
			}
		}
		return c.ProfessionText != "" && strings.Contains(strings.ToLower(c.ProfessionText), needle)
	default:
		return false
	}
}
