package catalog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func TestLoad(t *testing.T) {
	c, err := Load(context.Background(), Options{
		PostingsFile: fixture("vacantes.json"),
		CoursesFile:  fixture("cursos.json"),
	}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, c.Postings, 2)
	require.Len(t, c.Courses, 3)

	first := c.Postings[0]
	assert.Equal(t, "1", first.ID, "numeric ids decode into strings")
	assert.Equal(t, []string{"Python 3.9", "SQL"}, first.TechnicalRequirements)
	assert.Equal(t, []string{"Trabajo en equipo"}, first.SoftRequirements)
	assert.Equal(t, "Desarrollador Python Junior", first.Title())
	assert.Equal(t, "Telecom URC", first.Company())

	assert.Equal(t, "Python", c.Courses[0].Skill)
	assert.Equal(t, "Coursera", c.Courses[0].Extra["proveedor"])

	assert.Same(t, c.Postings[1], c.FindByID("2"))
	assert.Nil(t, c.FindByID("404"))

	assert.Equal(t,
		[]string{"Python 3.9", "SQL", "Trabajo en equipo", "Google Ads", "SEO", "Excel avanzado", "Comunicación", "Liderazgo de proyectos"},
		c.Requirements(),
	)
}

func TestLoadStripHTML(t *testing.T) {
	c, err := Load(context.Background(), Options{
		PostingsFile: fixture("vacantes.json"),
		CoursesFile:  fixture("cursos.json"),
		StripHTML:    true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Gestión de campañas en Google Ads y posicionamiento SEO.", c.Postings[1].Description)
}

func TestLoadEmptyDescription(t *testing.T) {
	c, err := Load(context.Background(), Options{
		PostingsFile: fixture("empty_description.json"),
		CoursesFile:  fixture("cursos.json"),
		StripHTML:    true,
	}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, c.Postings, 2)
	assert.Equal(t, "", c.Postings[0].Description)
	assert.Equal(t, []string{"Python"}, c.Postings[0].TechnicalRequirements)
	assert.Equal(t, "Dev Python", c.Postings[1].Description)
}

func TestLoadKeepsLargeNumbers(t *testing.T) {
	c, err := Load(context.Background(), Options{
		PostingsFile: fixture("large_numbers.json"),
		CoursesFile:  fixture("cursos.json"),
	}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, c.Postings, 1)
	p := c.Postings[0]
	assert.Equal(t, "12345678901234567890", p.ID)
	assert.Equal(t, "Analista", p.Title())

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"salario":9007199254740993`)
	assert.Contains(t, string(raw), `"id":"12345678901234567890"`)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, err := Load(ctx, Options{
		PostingsFile: fixture("vacantes.json"),
		CoursesFile:  fixture("cursos.json"),
	}, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, c)
}

func TestLoadMissingFiles(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)

	c, err := Load(context.Background(), Options{
		PostingsFile: fixture("absent_vacantes.json"),
		CoursesFile:  fixture("absent_cursos.json"),
	}, zap.New(core))
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Courses)
	assert.NotNil(t, c.Postings)
	assert.Equal(t, 2, observed.FilterMessage("catalog file not found, continuing without it").Len())
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name     string
		postings string
		courses  string
		contains []string
		target   error
	}{
		{
			name:     "duplicate ids",
			postings: "duplicate_ids.json",
			courses:  "cursos.json",
			target:   ErrDuplicatePosting,
		},
		{
			name:     "missing description",
			postings: "missing_description.json",
			courses:  "cursos.json",
			target:   ErrMissingField,
			contains: []string{"missing_description.json", "posting 1", "descripcion"},
		},
		{
			name:     "course without skill",
			postings: "vacantes.json",
			courses:  "course_without_skill.json",
			contains: []string{"course_without_skill.json", "course 0", "Skill"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), Options{
				PostingsFile: fixture(tt.postings),
				CoursesFile:  fixture(tt.courses),
			}, zap.NewNop())
			require.Error(t, err)

			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			for _, part := range tt.contains {
				assert.Contains(t, err.Error(), part)
			}
		})
	}
}

func TestPostingMarshalKeepsPassthroughFields(t *testing.T) {
	p := &Posting{
		ID:          "10",
		Description: "Analista de datos",
		Extra:       map[string]any{"titulo": "Analista", "empresa": "ACME"},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "10", decoded["id"])
	assert.Equal(t, "Analista de datos", decoded["descripcion"])
	assert.Equal(t, "Analista", decoded["titulo"])
	assert.Equal(t, "ACME", decoded["empresa"])
	assert.Equal(t, []any{}, decoded["requisitos_tecnicos"])
	assert.Equal(t, []any{}, decoded["requisitos_blandos"])
}

func TestCourseMarshalKeepsPassthroughFields(t *testing.T) {
	raw, err := json.Marshal(&Course{Skill: "SQL", Extra: map[string]any{"proveedor": "Udemy"}})
	require.NoError(t, err)

	assert.JSONEq(t, `{"habilidad": "SQL", "proveedor": "Udemy"}`, string(raw))
}

func TestNewEmpty(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Postings)
	assert.NotNil(t, c.Courses)

	var nilCatalog *Catalog
	assert.True(t, nilCatalog.IsEmpty())
}
