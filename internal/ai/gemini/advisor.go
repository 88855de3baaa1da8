package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/ai"
	"github.com/spigell/vacancy-matcher/internal/logger"
	"github.com/spigell/vacancy-matcher/internal/utils"
)

const (
	providerName        = "gemini"
	defaultMaxLogLength = 200
	systemInstruction   = "You help job seekers understand skill gaps. Reply with valid JSON only."
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Advisor turns a ranked posting into a short summary and learning plan.
type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAdvisor(generator contentGenerator, maxLogLength int, log *zap.Logger) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		logger:    logger.WithProvider(log, providerName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (a *Advisor) Advise(ctx context.Context, resume string, gap *ai.Gap) (*ai.Advice, error) {
	if strings.TrimSpace(resume) == "" {
		return nil, errors.New("resume text is required")
	}
	if gap == nil {
		return nil, errors.New("gap is required")
	}

	prompt := buildPrompt(resume, gap)

	a.logger.Debug("gemini generate content request",
		zap.String(logger.FieldPostingID, gap.PostingID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.String(logger.FieldPostingID, gap.PostingID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	advice, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	advice.Raw = raw
	return advice, nil
}

func buildPrompt(resume string, gap *ai.Gap) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME}}\n\nPosting:\n{{DESCRIPTION}}\n\nMissing: {{MISSING}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{RESUME}}", strings.TrimSpace(resume),
		"{{POSTING_ID}}", gap.PostingID,
		"{{TITLE}}", orNone(gap.Title),
		"{{DESCRIPTION}}", strings.TrimSpace(gap.Description),
		"{{SCORE}}", fmt.Sprintf("%.2f", gap.Score),
		"{{MATCHED}}", list(gap.Matched),
		"{{MISSING}}", list(gap.Missing),
		"{{COURSES}}", list(gap.Courses),
	)
	return replacer.Replace(template)
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "none"
	}
	return s
}

func parseResponse(raw string) (*ai.Advice, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &ai.Advice{
		Summary:      coerceString(data["summary"]),
		LearningPlan: coerceStrings(data["learning_plan"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStrings accepts a JSON array or a newline separated string.
func coerceStrings(v any) []string {
	var items []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			items = append(items, coerceString(item))
		}
	case string:
		items = strings.Split(val, "\n")
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
