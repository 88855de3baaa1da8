package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spigell/vacancy-matcher/internal/ai"
	"github.com/spigell/vacancy-matcher/internal/catalog"
	"github.com/spigell/vacancy-matcher/internal/skills"
)

// Result is the match of one posting against a résumé.
type Result struct {
	Posting            *catalog.Posting  `json:"vacante"`
	Score              float64           `json:"puntaje_match"`
	MatchedSkills      []skills.Skill    `json:"habilidades_cumplidas"`
	MissingSkills      []skills.Skill    `json:"habilidades_faltantes"`
	RecommendedCourses []*catalog.Course `json:"cursos_recomendados"`
	Coverage           float64           `json:"puntaje_cobertura"`
	Relevance          float64           `json:"puntaje_relevancia"`
	Advice             *ai.Advice        `json:"consejo,omitempty"`
}

// Results is a ranked list of matches, best first.
type Results struct {
	Items []*Result
}

func (r *Results) Len() int {
	return len(r.Items)
}

// MarshalJSON encodes the results as a plain array.
func (r *Results) MarshalJSON() ([]byte, error) {
	if r.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Items)
}

func (r *Results) FindByID(id string) *Result {
	for _, res := range r.Items {
		if res.Posting.ID == id {
			return res
		}
	}
	return nil
}

func (r *Results) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, res := range r.Items {
		ids = append(ids, res.Posting.ID)
	}
	return ids
}

// Exclude removes the results of the given posting ids, keeping the ranking
// order, and returns the removed ids.
func (r *Results) Exclude(ids []string) []string {
	return r.removeWhere(func(res *Result) bool {
		return slices.Contains(ids, res.Posting.ID)
	})
}

// ExcludeBelow removes results scoring under minimum.
func (r *Results) ExcludeBelow(minimum float64) []string {
	return r.removeWhere(func(res *Result) bool {
		return res.Score < minimum
	})
}

// Truncate keeps the first n results and returns the ids of the rest.
func (r *Results) Truncate(n int) []string {
	if n < 0 || n >= len(r.Items) {
		return nil
	}

	dropped := make([]string, 0, len(r.Items)-n)
	for _, res := range r.Items[n:] {
		dropped = append(dropped, res.Posting.ID)
	}
	r.Items = r.Items[:n]

	return dropped
}

func (r *Results) removeWhere(drop func(*Result) bool) []string {
	var removed []string
	kept := r.Items[:0]
	for _, res := range r.Items {
		if drop(res) {
			removed = append(removed, res.Posting.ID)
			continue
		}
		kept = append(kept, res)
	}
	r.Items = kept
	return removed
}

func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByMissingSkill groups postings by the skills the résumé lacks for
// them, so the most valuable skills to learn stand out.
func (r *Results) ReportByMissingSkill() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, res := range r.Items {
		for _, skill := range res.MissingSkills {
			report[skill] = append(report[skill], map[string]string{
				"id":      res.Posting.ID,
				"title":   res.Posting.Title(),
				"company": res.Posting.Company(),
				"score":   fmt.Sprintf("%.2f", res.Score),
				"courses": fmt.Sprintf("%d", countCourses(res.RecommendedCourses, skill)),
			})
		}
	}
	return report
}

func countCourses(courses []*catalog.Course, skill skills.Skill) int {
	n := 0
	for _, c := range courses {
		if skills.Normalize(c.Skill) == skill {
			n++
		}
	}
	return n
}

// Gap describes the result for an advisor.
func (res *Result) Gap() *ai.Gap {
	courses := make([]string, 0, len(res.RecommendedCourses))
	for _, c := range res.RecommendedCourses {
		label := c.Skill
		if title, ok := c.Extra["titulo_curso"].(string); ok && title != "" {
			label = fmt.Sprintf("%s (%s)", title, c.Skill)
		}
		courses = append(courses, label)
	}

	return &ai.Gap{
		PostingID:   res.Posting.ID,
		Title:       res.Posting.Title(),
		Description: res.Posting.Description,
		Score:       res.Score,
		Matched:     res.MatchedSkills,
		Missing:     res.MissingSkills,
		Courses:     courses,
	}
}
