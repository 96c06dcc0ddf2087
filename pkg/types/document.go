// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model and configuration structs
// for the golazo fixture query engine.
package types

// Document is a single block of fixture text produced by the document
// source. Content and Metadata are treated as immutable once produced;
// the index and the engine only ever read them.
type Document struct {
	// Content is the fixture text, one formatted match line per row.
	Content string `json:"content" yaml:"content"`

	// Metadata carries provenance: source, date, content_type, league.
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
}

// DocRef is an abbreviated view of a retrieved Document as reported back
// to callers. Content longer than 200 characters is truncated with a
// trailing ellipsis; Metadata is carried over unchanged.
type DocRef struct {
	Content  string         `json:"content" yaml:"content"`
	Metadata map[string]any `json:"metadata" yaml:"metadata"`
}

// Result is the structured answer for one query.
type Result struct {
	// Question is the caller's question, verbatim.
	Question string `json:"question" yaml:"question"`

	// Answer is the post-processed generated answer, or one of the
	// fixed fallback messages when the pipeline degraded.
	Answer string `json:"answer" yaml:"answer"`

	// DocsUsed lists up to three of the retrieved documents that
	// grounded the answer. Empty when retrieval found nothing.
	DocsUsed []DocRef `json:"docs_used" yaml:"docs_used"`

	// CacheHit reports whether the result was served from (or stored
	// into) the query cache.
	CacheHit bool `json:"cache_hit" yaml:"cache_hit"`
}
