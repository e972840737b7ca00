// Package chunker provides a paragraph-aware bounded text chunker.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxSize is the default maximum chunk size in characters.
const DefaultMaxSize = 1500

// DefaultMinLength is the default minimum trimmed chunk length.
// Chunks at or below this length are discarded as stray fragments.
const DefaultMinLength = 50

// paragraphSep matches one or more consecutive blank lines, including
// lines containing only whitespace.
var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// Splitter splits raw document text into paragraph-respecting chunks.
type Splitter struct {
	maxSize   int
	minLength int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithMaxSize sets the maximum chunk size in characters.
func WithMaxSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithMinLength sets the minimum trimmed chunk length.
func WithMinLength(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.minLength = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		maxSize:   DefaultMaxSize,
		minLength: DefaultMinLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split breaks text into chunks on paragraph boundaries.
//
// Paragraphs accumulate greedily into a buffer; when appending the next
// paragraph (plus a separating blank line) would exceed the maximum size and
// the buffer is non-empty, the buffer is flushed as a chunk. A single
// paragraph longer than the maximum is emitted whole rather than split
// mid-paragraph. Chunks preserve original paragraph order. Empty input, or
// input whose every chunk falls at or below the minimum trimmed length,
// yields an empty slice.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	paragraphs := paragraphSep.Split(text, -1)
	var chunks []string
	var current strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(current.String())
		if len(trimmed) > s.minLength {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		if current.Len() > 0 && current.Len()+len(para)+2 > s.maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}
