package similarity

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "lowercases", input: "Desarrollador Python", expect: []string{"desarrollador", "python"}},
		{name: "drops stop words", input: "the analyst and the data", expect: []string{"analyst", "data"}},
		{name: "drops single characters", input: "a b c sql", expect: []string{"sql"}},
		{name: "keeps accented words", input: "Estadística aplicada", expect: []string{"estadística", "aplicada"}},
		{name: "splits punctuation", input: "node.js, SQL;docker", expect: []string{"node", "js", "sql", "docker"}},
		{name: "empty", input: "", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Tokenize(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestScores(t *testing.T) {
	docs := []Document{
		{ID: "1", Text: "Desarrollador Python junior"},
		{ID: "2", Text: "Especialista en marketing digital"},
		{ID: "3", Text: "Tengo experiencia en python"},
	}

	scores := Scores("Tengo experiencia en python", docs)

	if len(scores) != len(docs) {
		t.Fatalf("expected %d scores, got %d", len(docs), len(scores))
	}

	if scores["1"] <= 0 || scores["1"] >= 1 {
		t.Fatalf("expected partial similarity for shared term, got %v", scores["1"])
	}

	if math.Abs(scores["3"]-1) > 1e-9 {
		t.Fatalf("expected identical text to score 1, got %v", scores["3"])
	}

	if scores["2"] <= 0 {
		t.Fatalf("expected shared 'en' to give positive similarity, got %v", scores["2"])
	}

	if scores["2"] >= scores["1"] {
		t.Fatalf("expected python posting to outrank marketing: %v vs %v", scores["1"], scores["2"])
	}
}

func TestScoresNoOverlap(t *testing.T) {
	scores := Scores("cocinero profesional", []Document{{ID: "x", Text: "analista financiero"}})

	if scores["x"] != 0 {
		t.Fatalf("expected 0 without shared terms, got %v", scores["x"])
	}
}

func TestScoresDegenerateVocabulary(t *testing.T) {
	docs := []Document{{ID: "a", Text: "the and of"}, {ID: "b", Text: ""}}

	scores := Scores("it is what it is", docs)

	for _, doc := range docs {
		got, ok := scores[doc.ID]
		if !ok {
			t.Fatalf("expected score for %s", doc.ID)
		}
		if got != 0 {
			t.Fatalf("expected 0 for %s, got %v", doc.ID, got)
		}
	}
}

func TestScoresEmptyDocuments(t *testing.T) {
	if got := Scores("python", nil); len(got) != 0 {
		t.Fatalf("expected no scores, got %v", got)
	}
}

func TestScoresDeterministic(t *testing.T) {
	docs := []Document{
		{ID: "1", Text: "Analista de datos con SQL y Excel"},
		{ID: "2", Text: "Desarrollador backend Node.js y Docker"},
	}

	first := Scores("SQL, Excel, Docker y trabajo en equipo", docs)
	second := Scores("SQL, Excel, Docker y trabajo en equipo", docs)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical scores, got %v and %v", first, second)
	}
}
