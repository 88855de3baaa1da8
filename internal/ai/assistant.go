package ai

import (
	"context"
)

// Advice is a short, generated explanation of how a candidate can close
// the skill gaps of one posting.
type Advice struct {
	Summary      string   `json:"resumen,omitempty"`
	LearningPlan []string `json:"plan,omitempty"`
	Error        string   `json:"error,omitempty"`
	Raw          string   `json:"-"`
}

// Gap is what an advisor knows about a single ranked posting.
type Gap struct {
	PostingID   string
	Title       string
	Description string
	Score       float64
	Matched     []string
	Missing     []string
	Courses     []string
}

type Advisor interface {
	Advise(ctx context.Context, resume string, gap *Gap) (*Advice, error)
}
