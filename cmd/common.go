package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/ai"
	"github.com/spigell/vacancy-matcher/internal/ai/gemini"
	"github.com/spigell/vacancy-matcher/internal/catalog"
	"github.com/spigell/vacancy-matcher/internal/filtering"
	"github.com/spigell/vacancy-matcher/internal/matching"
	"github.com/spigell/vacancy-matcher/internal/secrets"
)

func loadEngine(ctx context.Context, config *Config, logger *zap.Logger) (*matching.Engine, error) {
	c, err := catalog.Load(ctx, catalog.Options{
		PostingsFile: config.Catalog.PostingsFile,
		CoursesFile:  config.Catalog.CoursesFile,
		StripHTML:    config.Catalog.StripHTML,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	if c.IsEmpty() {
		logger.Warn("catalog has no postings, every match will be empty",
			zap.String("postings_file", config.Catalog.PostingsFile),
		)
	}

	return matching.NewEngine(c, logger), nil
}

func newAdvisor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Advisor, error) {
	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai advice is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAdvisor(generator, cfg.Gemini.MaxLogLength, logger), nil
}

// prepareFilters builds the steps run after ranking. advisor may be nil, in
// which case the advice step stays disabled.
func prepareFilters(config *Config, resume string, advisor ai.Advisor, logger *zap.Logger) *filtering.Filtering {
	model := ""
	if config.AI.Gemini != nil {
		model = config.AI.Gemini.Model
	}

	advice := filtering.NewAIAdvice(&filtering.AIAdviceConfig{
		Enabled: config.AI.Enabled && advisor != nil,
		Top:     config.AI.Top,
		Model:   model,
	}, &filtering.AIAdviceDeps{
		Advisor: advisor,
		Resume:  resume,
		Logger:  logger,
	})

	steps := []filtering.Filter{
		filtering.NewMinimumScore(config.Filters.MinimumScore),
		filtering.NewExcludeFile(config.Filters.ExcludeFile, logger),
		filtering.NewLimit(config.Filters.Limit),
		advice,
	}

	return filtering.New(steps, logger)
}

func maybeAdvisor(ctx context.Context, config *Config, logger *zap.Logger) ai.Advisor {
	if !config.AI.Enabled {
		return nil
	}

	advisor, err := newAdvisor(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI advice", zap.Error(err))
		return nil
	}
	return advisor
}

func describeFilters(f *filtering.Filtering, logger *zap.Logger) {
	for _, status := range f.Describe() {
		details := make([]string, 0, len(status.Details))
		for k, v := range status.Details {
			details = append(details, k+"="+v)
		}
		sort.Strings(details)
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.String("details", strings.Join(details, " ")),
		)
	}
}
