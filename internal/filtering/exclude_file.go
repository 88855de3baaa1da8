package filtering

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/spigell/vacancy-matcher/internal/matching"
)

// ExcludedPostings is the content of an exclude file: postings the user has
// already reviewed and does not want to see again.
type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	ID         string
	Title      string
	Company    string
	ExcludedAt time.Time
}

// ToExcluded converts results into exclude file entries.
func ToExcluded(r *matching.Results) *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, res := range r.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         res.Posting.ID,
			Title:      res.Posting.Title(),
			Company:    res.Posting.Company(),
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedPostingsFromFile reads an exclude file. A missing or empty file
// holds no postings.
func GetExcludedPostingsFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedPostings{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose ids are not in the list yet.
func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}

	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedPostings) PostingIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
