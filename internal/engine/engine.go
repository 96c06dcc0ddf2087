// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates the answer pipeline: cache lookup,
// retrieval, generation with the commentator persona, post-processing,
// and cache population, degrading to fixed fallback answers instead of
// surfacing errors.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golazo-dev/golazo/internal/llm"
	"github.com/golazo-dev/golazo/pkg/types"
)

// Searcher retrieves documents relevant to a query. The lifecycle
// manager implements it; tests supply a stub.
type Searcher interface {
	Search(query string, k int) []types.Document
}

// Completer generates an answer from retrieved context and a question.
// The OpenRouter backend implements it; tests supply a mock.
type Completer interface {
	Complete(ctx context.Context, contextText, question string) (string, error)
}

// Fallback answers, verbatim from the reference deployment.
const (
	answerNoResults  = "No encontré información relevante."
	answerTimeout    = "Error: Tiempo de espera agotado al generar respuesta"
	answerGenPrefix  = "Error al generar respuesta: "
	answerPipePrefix = "Error procesando la pregunta: "
)

const (
	// contextDocsCap bounds the generation context regardless of the
	// retrieval fan-out.
	contextDocsCap = 5

	// docsUsedCap bounds the documents echoed back to the caller.
	docsUsedCap = 3

	// truncateAt is the docs_used content limit in characters.
	truncateAt = 200
)

// Engine is the retrieve-then-generate query pipeline.
type Engine struct {
	cfg       types.EngineConfig
	searcher  Searcher
	completer Completer
	cache     *Cache
	w         io.Writer
}

// New returns an Engine over the given retrieval and generation
// backends. Recovered pipeline errors are reported to w.
func New(cfg types.EngineConfig, searcher Searcher, completer Completer, w io.Writer) *Engine {
	if w == nil {
		w = io.Discard
	}
	return &Engine{
		cfg:       cfg,
		searcher:  searcher,
		completer: completer,
		cache:     NewCache(cfg.CacheSize),
		w:         w,
	}
}

// Cache exposes the query cache for inspection.
func (e *Engine) Cache() *Cache { return e.cache }

// Query runs the full pipeline for question. It never returns an error:
// every failure degrades to a well-formed Result whose answer describes
// the problem. When useCache is true, results are served from and stored
// into the query cache.
func (e *Engine) Query(ctx context.Context, question string, useCache bool) (result types.Result) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(e.w, "query pipeline failure: %v\n", r)
			result = types.Result{
				Question: question,
				Answer:   fmt.Sprintf("%s%v", answerPipePrefix, r),
				DocsUsed: []types.DocRef{},
			}
		}
	}()

	if useCache {
		if cached, ok := e.cache.Get(question); ok {
			return cached
		}
	}

	maxResults := e.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}
	docs := e.searcher.Search(question, maxResults)

	if len(docs) == 0 {
		result = types.Result{
			Question: question,
			Answer:   answerNoResults,
			DocsUsed: []types.DocRef{},
		}
		if useCache {
			e.cache.Put(question, result)
		}
		return result
	}

	answer := e.generate(ctx, buildContext(docs), question)

	result = types.Result{
		Question: question,
		Answer:   cleanAnswer(answer),
		DocsUsed: buildDocsUsed(docs),
	}

	if useCache {
		// The stored copy carries cache_hit=true, so subsequent hits
		// report it; the reference implementation shares this flag
		// between the stored and returned result.
		result.CacheHit = true
		e.cache.Put(question, result)
	}
	return result
}

// generate invokes the completion backend and maps its failure modes to
// the fixed fallback answers.
func (e *Engine) generate(ctx context.Context, contextText, question string) string {
	answer, err := e.completer.Complete(ctx, contextText, question)
	switch {
	case err == nil:
		return answer
	case errors.Is(err, llm.ErrTimeout):
		fmt.Fprintf(e.w, "completion timed out: %v\n", err)
		return answerTimeout
	default:
		fmt.Fprintf(e.w, "completion failed: %v\n", err)
		return answerGenPrefix + err.Error()
	}
}

// buildContext concatenates the content of up to five retrieved
// documents as the generation grounding.
func buildContext(docs []types.Document) string {
	n := len(docs)
	if n > contextDocsCap {
		n = contextDocsCap
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = docs[i].Content
	}
	return strings.Join(parts, "\n")
}

// buildDocsUsed reports at most three retrieved documents, truncating
// content to 200 characters with a trailing ellipsis.
func buildDocsUsed(docs []types.Document) []types.DocRef {
	n := len(docs)
	if n > docsUsedCap {
		n = docsUsedCap
	}
	refs := make([]types.DocRef, n)
	for i := 0; i < n; i++ {
		refs[i] = types.DocRef{
			Content:  truncate(docs[i].Content),
			Metadata: docs[i].Metadata,
		}
	}
	return refs
}

// truncate limits content to truncateAt characters, appending "..." when
// it was cut. Limits are in runes so multibyte text is never split.
func truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= truncateAt {
		return content
	}
	return string(runes[:truncateAt]) + "..."
}

// cleanAnswer trims each line, drops blanks, and removes exact duplicate
// lines while preserving first-occurrence order.
func cleanAnswer(text string) string {
	seen := make(map[string]struct{})
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
