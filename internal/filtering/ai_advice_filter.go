package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/ai"
	"github.com/spigell/vacancy-matcher/internal/logger"
	"github.com/spigell/vacancy-matcher/internal/matching"
)

const defaultAdviceTop = 3

// AIAdviceConfig configures the advice step.
type AIAdviceConfig struct {
	Enabled bool
	// Top is the number of best results that receive advice.
	Top   int
	Model string
}

// AIAdviceDeps carries the collaborators of the advice step.
type AIAdviceDeps struct {
	Advisor ai.Advisor
	Resume  string
	Logger  *zap.Logger
}

type aiAdviceFilter struct {
	disabled bool
	reason   string
	config   *AIAdviceConfig
	deps     *AIAdviceDeps
}

// NewAIAdvice creates a step that asks the advisor for a learning plan for
// the best results. It never drops results.
func NewAIAdvice(cfg *AIAdviceConfig, deps *AIAdviceDeps) Filter {
	if cfg == nil {
		cfg = &AIAdviceConfig{}
	}
	if deps == nil {
		deps = &AIAdviceDeps{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	f := &aiAdviceFilter{config: cfg, deps: deps}
	if !cfg.Enabled {
		f.Disable("disabled in configuration")
	}
	return f
}

func (f *aiAdviceFilter) Name() string { return "ai_advice" }

func (f *aiAdviceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiAdviceFilter) IsEnabled() bool { return !f.disabled }

func (f *aiAdviceFilter) Validate() error {
	if f.deps.Advisor == nil {
		return errors.New("advisor is required when ai advice is enabled")
	}
	if strings.TrimSpace(f.deps.Resume) == "" {
		return errors.New("resume text is required for ai advice")
	}
	if f.config.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", f.config.Top)
	}
	return nil
}

func (f *aiAdviceFilter) Apply(ctx context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()

	top := f.config.Top
	if top == 0 {
		top = defaultAdviceTop
	}

	for idx, res := range r.Items {
		if idx >= top {
			break
		}
		if err := ctx.Err(); err != nil {
			return r, Step{}, err
		}

		advice, err := f.deps.Advisor.Advise(ctx, f.deps.Resume, res.Gap())
		if err != nil {
			f.deps.Logger.Warn("AI advice failed",
				append(logger.PostingFields(res.Posting.ID, res.Posting.Title()), zap.Error(err))...,
			)
			res.Advice = &ai.Advice{Error: err.Error()}
			continue
		}

		f.deps.Logger.Debug("AI advice received",
			append(logger.PostingFields(res.Posting.ID, res.Posting.Title()), zap.Int("plan_steps", len(advice.LearningPlan)))...,
		)
		res.Advice = advice
	}

	return r, Step{Initial: initial, Dropped: 0, Left: r.Len()}, nil
}

func (f *aiAdviceFilter) Status() Status {
	details := map[string]string{"top": strconv.Itoa(f.config.Top)}
	if f.config.Model != "" {
		details["model"] = f.config.Model
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
