package skills

import "strings"

// Skill is a canonical skill token. Only equality is meaningful.
type Skill = string

// synonym maps any text that satisfies match to a canonical skill.
type synonym struct {
	canonical Skill
	match     func(text string) bool
}

var synonyms = []synonym{
	{
		canonical: "estadística",
		match:     func(t string) bool { return strings.Contains(t, "estadistica") },
	},
	{
		canonical: "trabajo en equipo",
		match: func(t string) bool {
			return strings.Contains(t, "trabajo en equipo") || strings.Contains(t, "equipo")
		},
	},
	{
		canonical: "resolución de problemas",
		match: func(t string) bool {
			return strings.Contains(t, "resolución") && strings.Contains(t, "problemas")
		},
	},
}

// Terms is the ordered list of canonical terms recognised inside longer
// labels ("Python 3.9" -> "python"). Order matters: the first hit wins.
var Terms = []Skill{
	"python",
	"sql",
	"excel",
	"javascript",
	"node.js",
	"google ads",
	"seo",
	"docker",
	"liderazgo",
}

// Normalize maps raw text onto the canonical skill vocabulary.
//
// Matching is done on the whole string, not per token: the first synonym
// or term contained anywhere in the text wins and the rest of the text is
// discarded. Text without any hit comes back lowercased and trimmed. The
// same function is applied to single labels and to complete résumés, so a
// résumé mentioning "python" anywhere normalizes to just "python".
func Normalize(raw string) Skill {
	text := strings.ToLower(strings.TrimSpace(raw))

	for _, s := range synonyms {
		if s.match(text) {
			return s.canonical
		}
	}

	for _, term := range Terms {
		if strings.Contains(text, term) {
			return term
		}
	}

	return text
}

// NormalizeAll normalizes every raw label into a set.
func NormalizeAll(raw ...[]string) Set {
	set := make(Set)
	for _, list := range raw {
		for _, r := range list {
			set.Add(Normalize(r))
		}
	}
	return set
}
