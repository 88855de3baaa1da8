// Package catalog loads the read-only job postings and training courses
// the résumé is matched against.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPostingsFile = "vacantes.json"
	DefaultCoursesFile  = "cursos.json"
)

// Options describes where the catalog files live.
type Options struct {
	PostingsFile string
	CoursesFile  string
	// StripHTML converts HTML posting descriptions to plain text.
	StripHTML bool
}

var validate = validator.New()

// Load reads both catalog files concurrently. A missing file is not an
// error: it is logged as a warning and contributes no records. Malformed
// records fail the load with the file name and record index.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.PostingsFile == "" {
		opts.PostingsFile = DefaultPostingsFile
	}
	if opts.CoursesFile == "" {
		opts.CoursesFile = DefaultCoursesFile
	}

	var (
		postings []*Posting
		courses  []*Course
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := readRecords(opts.PostingsFile, logger)
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		postings, err = decodePostings(opts.PostingsFile, records, opts.StripHTML)
		return err
	})

	g.Go(func() error {
		records, err := readRecords(opts.CoursesFile, logger)
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		courses, err = decodeCourses(opts.CoursesFile, records)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c, err := New(postings, courses)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.PostingsFile, err)
	}

	logger.Info("catalog loaded",
		zap.Int("postings", len(c.Postings)),
		zap.Int("courses", len(c.Courses)),
	)

	return c, nil
}

func readRecords(path string, logger *zap.Logger) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("catalog file not found, continuing without it",
			zap.String("path", path),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	// Numbers stay json.Number so passthrough fields are written back
	// with their original digits.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", path, err)
	}

	return records, nil
}

func decodePostings(path string, records []map[string]any, stripHTML bool) ([]*Posting, error) {
	postings := make([]*Posting, 0, len(records))
	for idx, record := range records {
		// An empty description is valid and only scores no relevance.
		if _, ok := record[PostingDescriptionField]; !ok {
			return nil, fmt.Errorf("%s: posting %d: %w: %s", path, idx, ErrMissingField, PostingDescriptionField)
		}

		p := &Posting{}
		if err := decodeRecord(record, p); err != nil {
			return nil, fmt.Errorf("%s: posting %d: %w", path, idx, err)
		}

		if stripHTML {
			text, err := htmlToText(p.Description)
			if err != nil {
				return nil, fmt.Errorf("%s: posting %d: %w", path, idx, err)
			}
			p.Description = text
		}

		postings = append(postings, p)
	}
	return postings, nil
}

func decodeCourses(path string, records []map[string]any) ([]*Course, error) {
	courses := make([]*Course, 0, len(records))
	for idx, record := range records {
		c := &Course{}
		if err := decodeRecord(record, c); err != nil {
			return nil, fmt.Errorf("%s: course %d: %w", path, idx, err)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// decodeRecord maps a loose JSON object onto a typed record. Weak typing
// lets numeric ids decode into strings.
func decodeRecord(record map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(record); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	return nil
}

func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse description html: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
