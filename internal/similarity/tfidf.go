// Package similarity scores free text against a set of documents using
// TF-IDF weighted term vectors and cosine similarity.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Document is a single scored text, identified by ID.
type Document struct {
	ID   string
	Text string
}

// Tokens are runs of at least two word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into terms, dropping stop words.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)

	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if stopWords.has(token) {
			continue
		}
		terms = append(terms, token)
	}

	return terms
}

// Scores returns the cosine similarity between query and every document,
// keyed by document ID.
//
// The query and the documents form the corpus (query first). Terms are
// weighted by raw count times smoothed idf, ln((1+n)/(1+df)) + 1, and each
// row is L2-normalized. When the corpus has no usable terms every document
// scores 0.
func Scores(query string, docs []Document) map[string]float64 {
	scores := make(map[string]float64, len(docs))
	for _, doc := range docs {
		scores[doc.ID] = 0
	}

	if len(docs) == 0 {
		return scores
	}

	corpus := make([][]string, 0, len(docs)+1)
	corpus = append(corpus, Tokenize(query))
	for _, doc := range docs {
		corpus = append(corpus, Tokenize(doc.Text))
	}

	vocab := vocabulary(corpus)
	if len(vocab) == 0 {
		return scores
	}

	idf := inverseFrequencies(corpus, vocab)

	q := weigh(corpus[0], vocab, idf)
	for i, doc := range docs {
		scores[doc.ID] = cosine(q, weigh(corpus[i+1], vocab, idf))
	}

	return scores
}

// vocabulary maps every distinct term to a column, in sorted term order so
// that vectors are laid out identically between calls.
func vocabulary(corpus [][]string) map[string]int {
	seen := make(map[string]struct{})
	for _, terms := range corpus {
		for _, term := range terms {
			seen[term] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(seen))
	for term := range seen {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)

	vocab := make(map[string]int, len(sorted))
	for idx, term := range sorted {
		vocab[term] = idx
	}
	return vocab
}

func inverseFrequencies(corpus [][]string, vocab map[string]int) []float64 {
	df := make([]float64, len(vocab))
	for _, terms := range corpus {
		counted := make(map[int]struct{}, len(terms))
		for _, term := range terms {
			col := vocab[term]
			if _, ok := counted[col]; ok {
				continue
			}
			counted[col] = struct{}{}
			df[col]++
		}
	}

	n := float64(len(corpus))
	idf := make([]float64, len(vocab))
	for col, freq := range df {
		idf[col] = math.Log((1+n)/(1+freq)) + 1
	}
	return idf
}

func weigh(terms []string, vocab map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(vocab))
	for _, term := range terms {
		vec[vocab[term]]++
	}

	floats.Mul(vec, idf)

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	// weights are non-negative, so only rounding can leave [0, 1]
	return math.Min(1, floats.Dot(a, b)/(na*nb))
}
