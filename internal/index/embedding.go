// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches unicode word runs, keeping intra-word apostrophes.
var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// embedder is a TF-IDF vectorizer over the fixture corpus. It builds a
// vocabulary and smoothed IDF values during prepare and produces
// L2-normalized vectors.
type embedder struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
}

// prepare builds the vocabulary and IDF values from the corpus.
func (e *embedder) prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF.
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	return nil
}

// embed computes the L2-normalized TF-IDF vector for text. A text sharing
// no vocabulary with the corpus yields the zero vector.
func (e *embedder) embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// tokenize lowercases text and drops stopwords.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// stopwords covers Spanish (the corpus language) plus common English fillers.
var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "al", "ante", "como", "con", "contra", "de", "del", "desde",
		"donde", "el", "ella", "ellos", "en", "entre", "es", "esta", "este",
		"hay", "hoy", "la", "las", "lo", "los", "más", "no", "o", "para",
		"pero", "por", "que", "qué", "se", "sin", "sobre", "son", "su",
		"sus", "un", "una", "y", "ya",
		"an", "and", "are", "at", "by", "for", "from", "in", "is", "of",
		"on", "or", "the", "to", "what", "which", "with",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
