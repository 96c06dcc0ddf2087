// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index implements the semantic fixture index: a TF-IDF vector
// index over fixture documents with brute-force cosine search, persisted
// to a SQLite artifact under the index directory.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/golazo-dev/golazo/pkg/types"
)

// Index is an immutable semantic index over a document set. It is built
// in bulk and never mutated; the lifecycle manager replaces whole Index
// values, so concurrent readers need no locking here.
type Index struct {
	docs    []types.Document
	vectors [][]float64
	emb     *embedder
}

// Build constructs an Index from docs. The document set must be non-empty;
// the caller substitutes a placeholder document for an empty day.
func Build(docs []types.Document) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("building index: no documents")
	}

	corpus := make([]string, len(docs))
	for i, d := range docs {
		corpus[i] = d.Content
	}

	emb := &embedder{}
	if err := emb.prepare(corpus); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	vectors := make([][]float64, len(docs))
	for i, d := range docs {
		vectors[i] = emb.embed(d.Content)
	}

	return &Index{docs: docs, vectors: vectors, emb: emb}, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Search returns up to k documents ordered by descending relevance to
// query. When the query shares no vocabulary with the corpus it falls
// back to lexical token overlap so short questions still retrieve.
func (ix *Index) Search(query string, k int) []types.Document {
	if k <= 0 || len(ix.docs) == 0 {
		return nil
	}

	qvec := ix.emb.embed(query)
	scores := make([]float64, len(ix.vectors))
	zero := true
	for i, v := range ix.vectors {
		scores[i] = dot(v, qvec)
		if scores[i] != 0 {
			zero = false
		}
	}
	if zero {
		scores = ix.lexicalScores(query)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if k > len(order) {
		k = len(order)
	}
	out := make([]types.Document, 0, k)
	for _, idx := range order[:k] {
		out = append(out, ix.docs[idx])
	}
	return out
}

// lexicalScores ranks documents by token-set overlap (Ochiai coefficient)
// with the query.
func (ix *Index) lexicalScores(query string) []float64 {
	qset := make(map[string]struct{})
	for _, t := range tokenize(query) {
		qset[t] = struct{}{}
	}

	scores := make([]float64, len(ix.docs))
	if len(qset) == 0 {
		return scores
	}
	for i, d := range ix.docs {
		dset := make(map[string]struct{})
		for _, t := range tokenize(d.Content) {
			dset[t] = struct{}{}
		}
		if len(dset) == 0 {
			continue
		}
		inter := 0
		for t := range qset {
			if _, ok := dset[t]; ok {
				inter++
			}
		}
		scores[i] = float64(inter) / math.Sqrt(float64(len(qset))*float64(len(dset)))
	}
	return scores
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
