package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// VectorizerConfig holds the TF-IDF feature extraction settings
type VectorizerConfig struct {
	// MaxDF excludes terms found in more than this fraction of documents
	MaxDF float64
	// MinDF excludes terms found in fewer than this many documents
	MinDF int
	// MaxFeatures caps the vocabulary at the most frequent qualifying terms
	MaxFeatures int
	Stopwords   StopwordSet
}

// DefaultVectorizerConfig returns the default feature extraction settings
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxDF:       0.8,
		MinDF:       2,
		MaxFeatures: 1000,
		Stopwords:   EnglishStopwords,
	}
}

// FeatureMatrix is a batch of TF-IDF vectors, one row per document and one
// column per vocabulary term
type FeatureMatrix struct {
	Matrix     *mat.Dense
	Vocabulary []string
}

// Vectorizer converts batches of normalized texts into TF-IDF vectors. It
// keeps no state between calls; every batch builds its own vocabulary.
type Vectorizer struct {
	cfg VectorizerConfig
}

// NewVectorizer creates a new vectorizer
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	return &Vectorizer{cfg: cfg}
}

// Vectorize builds the TF-IDF matrix for texts
func (v *Vectorizer) Vectorize(texts []string) (*FeatureMatrix, error) {
	n := len(texts)
	if n == 0 {
		return nil, fmt.Errorf("%w: no texts to vectorize", ErrEmptyInput)
	}

	counts := make([]map[string]int, n)
	docFreq := make(map[string]int)
	totalFreq := make(map[string]int)
	for i, text := range texts {
		counts[i] = make(map[string]int)
		for _, tok := range tokenize(text) {
			if v.cfg.Stopwords.Contains(tok) {
				continue
			}
			if counts[i][tok] == 0 {
				docFreq[tok]++
			}
			counts[i][tok]++
			totalFreq[tok]++
		}
	}

	maxDocs := v.maxDocCount(n)
	if maxDocs < float64(v.cfg.MinDF) {
		return nil, fmt.Errorf("%w: %d documents cannot satisfy min_df=%d with max_df=%g",
			ErrInsufficientData, n, v.cfg.MinDF, v.cfg.MaxDF)
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.cfg.MinDF || float64(df) > maxDocs {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms remain after document frequency filtering (%d documents)",
			ErrInsufficientData, n)
	}

	if v.cfg.MaxFeatures > 0 && len(terms) > v.cfg.MaxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			fa, fb := totalFreq[terms[a]], totalFreq[terms[b]]
			if fa != fb {
				return fa > fb
			}
			return terms[a] < terms[b]
		})
		terms = terms[:v.cfg.MaxFeatures]
	}
	sort.Strings(terms)

	column := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for j, term := range terms {
		column[term] = j
		// smoothed inverse document frequency
		idf[j] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	d := len(terms)
	data := make([]float64, n*d)
	for i := range counts {
		row := data[i*d : (i+1)*d]
		for term, c := range counts[i] {
			if j, ok := column[term]; ok {
				row[j] = float64(c) * idf[j]
			}
		}
		l2Normalize(row)
	}

	return &FeatureMatrix{
		Matrix:     mat.NewDense(n, d, data),
		Vocabulary: terms,
	}, nil
}

// maxDocCount interprets MaxDF as a fraction of n when at most 1, otherwise as an absolute count
func (v *Vectorizer) maxDocCount(n int) float64 {
	if v.cfg.MaxDF <= 0 {
		return float64(n)
	}
	if v.cfg.MaxDF <= 1 {
		return v.cfg.MaxDF * float64(n)
	}
	return v.cfg.MaxDF
}

// tokenize splits text into lowercase word tokens of at least two characters
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func l2Normalize(row []float64) {
	norm := floats.Norm(row, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, row)
}
