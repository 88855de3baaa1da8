package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

const (
	PostingIDField          = "id"
	PostingDescriptionField = "descripcion"
	PostingTechnicalField   = "requisitos_tecnicos"
	PostingSoftField        = "requisitos_blandos"
	CourseSkillField        = "habilidad"
)

var (
	ErrDuplicatePosting = errors.New("duplicate posting id")
	ErrMissingField     = errors.New("missing required field")
)

// Catalog holds the postings and courses scored against a résumé. It is
// built once and never mutated afterwards, so it can be shared between
// concurrent requests.
type Catalog struct {
	Postings []*Posting
	Courses  []*Course
}

type Posting struct {
	ID                    string         `mapstructure:"id" validate:"required"`
	Description           string         `mapstructure:"descripcion"`
	TechnicalRequirements []string       `mapstructure:"requisitos_tecnicos"`
	SoftRequirements      []string       `mapstructure:"requisitos_blandos"`
	Extra                 map[string]any `mapstructure:",remain"`
}

type Course struct {
	Skill string         `mapstructure:"habilidad" validate:"required"`
	Extra map[string]any `mapstructure:",remain"`
}

// New builds a catalog, rejecting postings that share an id.
func New(postings []*Posting, courses []*Course) (*Catalog, error) {
	seen := make(map[string]struct{}, len(postings))
	for idx, p := range postings {
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("posting %d: %w: %s", idx, ErrDuplicatePosting, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if postings == nil {
		postings = []*Posting{}
	}
	if courses == nil {
		courses = []*Course{}
	}

	return &Catalog{Postings: postings, Courses: courses}, nil
}

func (c *Catalog) IsEmpty() bool {
	return c == nil || len(c.Postings) == 0
}

// FindByID returns the posting with the given id or nil.
func (c *Catalog) FindByID(id string) *Posting {
	for _, p := range c.Postings {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Requirements returns the raw technical and soft requirements of every
// posting, in catalog order.
func (c *Catalog) Requirements() []string {
	var all []string
	for _, p := range c.Postings {
		all = append(all, p.TechnicalRequirements...)
		all = append(all, p.SoftRequirements...)
	}
	return all
}

// Title returns the passthrough "titulo" field when present.
func (p *Posting) Title() string {
	if title, ok := p.Extra["titulo"].(string); ok {
		return title
	}
	return ""
}

// Company returns the passthrough "empresa" field when present.
func (p *Posting) Company() string {
	if company, ok := p.Extra["empresa"].(string); ok {
		return company
	}
	return ""
}

// MarshalJSON emits the record with its original keys, passthrough fields
// included.
func (p *Posting) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+4)
	maps.Copy(out, p.Extra)

	out[PostingIDField] = p.ID
	out[PostingDescriptionField] = p.Description
	out[PostingTechnicalField] = nonNil(p.TechnicalRequirements)
	out[PostingSoftField] = nonNil(p.SoftRequirements)

	return json.Marshal(out)
}

func (c *Course) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	maps.Copy(out, c.Extra)

	out[CourseSkillField] = c.Skill

	return json.Marshal(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
