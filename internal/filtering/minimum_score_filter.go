package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/vacancy-matcher/internal/matching"
)

type minimumScoreFilter struct {
	minimum  float64
	disabled bool
	reason   string
}

// NewMinimumScore creates a filter that drops results scoring below minimum (0-100).
func NewMinimumScore(minimum float64) Filter {
	return &minimumScoreFilter{minimum: minimum}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate() error {
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be within [0, 100], got %.2f", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if f.minimum == 0 {
		return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	dropped := r.ExcludeBelow(f.minimum)

	return r, Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum": fmt.Sprintf("%.2f", f.minimum)},
	}
}
