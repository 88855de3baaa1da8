// Package matching ranks catalog postings against a résumé by blending
// skill coverage with text similarity, and attaches courses for the skills
// the résumé is missing.
package matching

import (
	"errors"
	"math"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/catalog"
	"github.com/spigell/vacancy-matcher/internal/similarity"
	"github.com/spigell/vacancy-matcher/internal/skills"
	"github.com/spigell/vacancy-matcher/internal/utils"
)

const (
	CoverageWeight  = 0.6
	RelevanceWeight = 0.4

	logPreviewLength = 120
)

var ErrInvalidInput = errors.New("invalid input: resume text is required")

// Engine ranks résumés against a fixed catalog. Everything derived from the
// catalog is computed once in NewEngine; Rank only reads it, so one engine
// serves concurrent callers.
type Engine struct {
	catalog *catalog.Catalog
	logger  *zap.Logger

	known    []string
	docs     []similarity.Document
	required []skills.Set
	courses  []skills.Skill
}

func NewEngine(c *catalog.Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = &catalog.Catalog{Postings: []*catalog.Posting{}, Courses: []*catalog.Course{}}
	}

	e := &Engine{
		catalog:  c,
		logger:   logger,
		known:    c.Requirements(),
		docs:     make([]similarity.Document, 0, len(c.Postings)),
		required: make([]skills.Set, 0, len(c.Postings)),
		courses:  make([]skills.Skill, 0, len(c.Courses)),
	}

	for _, p := range c.Postings {
		e.docs = append(e.docs, similarity.Document{ID: p.ID, Text: p.Description})
		e.required = append(e.required, skills.NormalizeAll(p.TechnicalRequirements, p.SoftRequirements))
	}

	for _, course := range c.Courses {
		e.courses = append(e.courses, skills.Normalize(course.Skill))
	}

	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Rank scores every posting of the catalog against the résumé and returns
// them best first. Postings with equal scores keep their catalog order.
func (e *Engine) Rank(resume string) (*Results, error) {
	if resume == "" {
		return nil, ErrInvalidInput
	}

	results := &Results{Items: make([]*Result, 0, len(e.catalog.Postings))}
	if e.catalog.IsEmpty() {
		e.logger.Info("catalog is empty, nothing to rank")
		return results, nil
	}

	found := skills.Extract(resume, e.known)
	relevance := similarity.Scores(resume, e.docs)

	e.logger.Debug("resume analyzed",
		zap.Int("resume_length", utf8.RuneCountInString(resume)),
		zap.String("resume_preview", utils.TruncateForLog(resume, logPreviewLength)),
		zap.Strings("resume_skills", found.Sorted()),
	)

	for idx, posting := range e.catalog.Postings {
		required := e.required[idx]
		matched := required.Intersect(found)
		missing := required.Difference(matched)

		coverage := 0.0
		if required.Len() > 0 {
			coverage = float64(matched.Len()) / float64(required.Len())
		}

		rel := relevance[posting.ID]

		results.Items = append(results.Items, &Result{
			Posting:            posting,
			Score:              finalScore(coverage, rel),
			MatchedSkills:      matched.Sorted(),
			MissingSkills:      missing.Sorted(),
			RecommendedCourses: e.coursesFor(missing),
			Coverage:           coverage,
			Relevance:          rel,
		})
	}

	sort.SliceStable(results.Items, func(i, j int) bool {
		return results.Items[i].Score > results.Items[j].Score
	})

	e.logger.Debug("postings ranked", zap.Int("count", results.Len()))

	return results, nil
}

// coursesFor returns, in catalog order, every course teaching a missing skill.
func (e *Engine) coursesFor(missing skills.Set) []*catalog.Course {
	courses := make([]*catalog.Course, 0)
	for idx, skill := range e.courses {
		if missing.Has(skill) {
			courses = append(courses, e.catalog.Courses[idx])
		}
	}
	return courses
}

// finalScore blends coverage and relevance onto a 0-100 scale with two
// decimals.
func finalScore(coverage, relevance float64) float64 {
	blended := coverage*CoverageWeight + relevance*RelevanceWeight
	return math.Round(blended*100*100) / 100
}
