package embed

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Sparse is the TF-IDF fallback embedder. The vocabulary is fit jointly
// over both batches of each EmbedPair call so candidate and job vectors
// share one dimension space, and rows are L2-normalized. Term order is
// sorted, which makes the embedding deterministic for a fixed corpus.
type Sparse struct {
	maxDF float64
}

// ErrSparseEmbed is returned when the sparse strategy is asked to embed a
// batch outside a jointly fitted corpus.
var ErrSparseEmbed = errors.New("sparse strategy embeds only joint corpora; use EmbedPair")

// NewSparse creates a TF-IDF embedder with unigram+bigram features and a
// 0.95 document-frequency ceiling.
func NewSparse() *Sparse {
	return &Sparse{maxDF: 0.95}
}

// Strategy implements Embedder.
func (s *Sparse) Strategy() Strategy { return StrategySparse }

// Embed implements Embedder; the sparse strategy rejects it.
func (s *Sparse) Embed(context.Context, []string) ([][]float64, error) {
	return nil, ErrSparseEmbed
}

// EmbedPair fits one vocabulary over left+right and returns normalized
// TF-IDF rows split back into the two batches.
func (s *Sparse) EmbedPair(_ context.Context, left, right []string) ([][]float64, [][]float64, error) {
	corpus := make([]string, 0, len(left)+len(right))
	corpus = append(corpus, left...)
	corpus = append(corpus, right...)

	rows := s.fitTransform(corpus)
	return rows[:len(left)], rows[len(left):], nil
}

func (s *Sparse) fitTransform(corpus []string) [][]float64 {
	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, text := range corpus {
		docs[i] = tokenize(text)
		for _, term := range uniqueTerms(docs[i]) {
			df[term]++
		}
	}

	// Drop terms present in more than maxDF of the documents; with a tiny
	// corpus the ceiling keeps at least terms seen once.
	n := len(corpus)
	ceiling := int(math.Floor(s.maxDF * float64(n)))
	if ceiling < 1 {
		ceiling = 1
	}

	vocab := make([]string, 0, len(df))
	for term, count := range df {
		if count <= ceiling {
			vocab = append(vocab, term)
		}
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	// Smoothed idf: ln((1+n)/(1+df)) + 1.
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([][]float64, n)
	for i, terms := range docs {
		row := make([]float64, len(vocab))
		for _, term := range terms {
			if j, ok := index[term]; ok {
				row[j] += idf[j]
			}
		}
		rows[i] = NormalizeRow(row)
	}
	return rows
}

// tokenize lowercases and extracts word tokens of at least two characters,
// emitting unigrams and bigrams.
func tokenize(text string) []string {
	words := splitWords(strings.ToLower(text))

	terms := make([]string, 0, 2*len(words))
	for _, w := range words {
		terms = append(terms, w)
	}
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

func splitWords(text string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() >= 2 {
			words = append(words, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0:0]
	for _, t := range terms {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
