package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/vacancy-matcher/internal/matching"
)

type limitFilter struct {
	limit int
}

// NewLimit creates a filter that keeps only the best limit results. Zero keeps everything.
func NewLimit(limit int) Filter {
	return &limitFilter{limit: limit}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Disable(string) {}

func (f *limitFilter) IsEnabled() bool { return true }

func (f *limitFilter) Validate() error {
	if f.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.limit)
	}
	return nil
}

func (f *limitFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()
	if f.limit == 0 {
		return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
	}

	dropped := r.Truncate(f.limit)

	return r, Step{Initial: initial, Dropped: len(dropped), Left: r.Len()}, nil
}

func (f *limitFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"limit": strconv.Itoa(f.limit)}}
}
