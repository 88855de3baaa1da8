package skills

import "sort"

// Set is an unordered collection of skills.
type Set map[Skill]struct{}

// NewSet builds a set from the given skills.
func NewSet(items ...Skill) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set) Add(skill Skill) { s[skill] = struct{}{} }

func (s Set) Has(skill Skill) bool {
	_, ok := s[skill]
	return ok
}

func (s Set) Len() int { return len(s) }

// Intersect returns the skills present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for skill := range s {
		if other.Has(skill) {
			out.Add(skill)
		}
	}
	return out
}

// Difference returns the skills of s missing from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for skill := range s {
		if !other.Has(skill) {
			out.Add(skill)
		}
	}
	return out
}

// Sorted returns the skills in ascending order. It never returns nil.
func (s Set) Sorted() []Skill {
	out := make([]Skill, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
