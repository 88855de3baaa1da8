package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/catalog"
	"github.com/spigell/vacancy-matcher/internal/filtering"
	"github.com/spigell/vacancy-matcher/internal/matching"
)

func newTestServer(t *testing.T, filters FiltersFactory) *Server {
	t.Helper()

	c, err := catalog.New(
		[]*catalog.Posting{
			{
				ID:                    "1",
				Description:           "Desarrollador Python junior",
				TechnicalRequirements: []string{"Python"},
				SoftRequirements:      []string{"Trabajo en equipo"},
				Extra:                 map[string]any{"titulo": "Dev Python", "empresa": "ACME"},
			},
			{
				ID:                    "2",
				Description:           "Analista de marketing",
				TechnicalRequirements: []string{"SEO"},
			},
		},
		[]*catalog.Course{{Skill: "Trabajo en equipo", Extra: map[string]any{"titulo_curso": "Colaboración"}}},
	)
	require.NoError(t, err)

	return New(matching.NewEngine(c, zap.NewNop()), filters, Config{}, zap.NewNop())
}

func post(t *testing.T, app *fiber.App, body, contentType string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/aplicar", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestApply(t *testing.T) {
	s := newTestServer(t, nil)

	resp := post(t, s.App(), `{"cv_texto": "Tengo experiencia en python"}`, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)

	first := body[0]
	vacante := first["vacante"].(map[string]any)
	assert.Equal(t, "1", vacante["id"])
	assert.Equal(t, "Dev Python", vacante["titulo"])
	assert.Equal(t, []any{"python"}, first["habilidades_cumplidas"])
	assert.Equal(t, []any{"trabajo en equipo"}, first["habilidades_faltantes"])
	assert.Greater(t, first["puntaje_match"].(float64), 30.0)

	courses := first["cursos_recomendados"].([]any)
	require.Len(t, courses, 1)
	assert.Equal(t, "Colaboración", courses[0].(map[string]any)["titulo_curso"])

	assert.GreaterOrEqual(t, first["puntaje_match"].(float64), body[1]["puntaje_match"].(float64))
}

func TestApplyBadRequest(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{name: "empty text", body: `{"cv_texto": ""}`, contentType: fiber.MIMEApplicationJSON},
		{name: "missing field", body: `{}`, contentType: fiber.MIMEApplicationJSON},
		{name: "not json", body: `cv_texto=python`, contentType: fiber.MIMETextPlain},
		{name: "broken json", body: `{"cv_texto":`, contentType: fiber.MIMEApplicationJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, s.App(), tt.body, tt.contentType)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"error": "Debe enviar 'cv_texto' en la solicitud."}`, string(raw))
		})
	}
}

func TestApplyBlankResume(t *testing.T) {
	s := newTestServer(t, nil)

	resp := post(t, s.App(), `{"cv_texto": "   "}`, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, 0.0, body[0]["puntaje_match"])
	assert.Equal(t, 0.0, body[1]["puntaje_match"])
}

func TestApplyWithFilters(t *testing.T) {
	s := newTestServer(t, func(string) *filtering.Filtering {
		return filtering.New([]filtering.Filter{filtering.NewLimit(1)}, nil)
	})

	resp := post(t, s.App(), `{"cv_texto": "python"}`, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 1)
}

func TestApplyEmptyCatalog(t *testing.T) {
	s := New(matching.NewEngine(nil, nil), nil, Config{}, nil)

	resp := post(t, s.App(), `{"cv_texto": "python"}`, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "ok", "postings": 2, "courses": 1}`, string(raw))
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/aplicar", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:8080")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
