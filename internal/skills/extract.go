package skills

import "strings"

// Extract returns the known skills found in the résumé text.
//
// Every known label and the résumé itself go through Normalize; a skill
// counts as found when its normalized form is a substring of the
// normalized résumé. Because a résumé containing a canonical term
// collapses to that term, only skills that are substrings of it survive.
func Extract(resume string, known []string) Set {
	found := make(Set)
	text := Normalize(resume)

	for _, label := range known {
		skill := Normalize(label)
		if strings.Contains(text, skill) {
			found.Add(skill)
		}
	}

	return found
}
