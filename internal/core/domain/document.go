package domain

import (
	"strings"
	"time"
)

// DefaultLanguage is assumed when a document carries no language tag.
const DefaultLanguage = "zh-CN"

// SnippetLength is the maximum matched-snippet length in runes.
const SnippetLength = 200

// Document represents a knowledge-base article eligible for retrieval.
// It is the unit the engine indexes and returns.
type Document struct {
	// ID is the unique identifier, assigned by the document store.
	// It is immutable for the document's lifetime.
	ID string

	// Title is the human-readable title.
	Title string

	// Content is the full body text.
	Content string

	// Tags are free-form labels attached by authors.
	Tags []string

	// Language is a tag used for optional result filtering.
	// The index itself treats all documents as one corpus.
	Language string

	// Active marks whether the document participates in retrieval.
	// Inactive documents are excluded from index and results.
	Active bool

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// EmbeddingText returns the text embedded for this document.
// The same formatting must be used for both sides of a comparison,
// so queries are embedded raw and documents as "{title}. {content}".
func (d Document) EmbeddingText() string {
	return d.Title + ". " + d.Content
}

// LanguageOrDefault returns the document language, or DefaultLanguage
// when none is set.
func (d Document) LanguageOrDefault() string {
	if d.Language == "" {
		return DefaultLanguage
	}
	return d.Language
}

// Snippet returns the first maxRunes runes of the content, with an
// ellipsis appended when the content was truncated.
func (d Document) Snippet(maxRunes int) string {
	runes := []rune(d.Content)
	if len(runes) <= maxRunes {
		return d.Content
	}
	return string(runes[:maxRunes]) + "..."
}

// TagList returns the tags joined for display, e.g. "Python, Web".
func (d Document) TagList() string {
	return strings.Join(d.Tags, ", ")
}
