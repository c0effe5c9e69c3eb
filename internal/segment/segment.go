package segment

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the number of words per segment.
	DefaultSize = 800
	// DefaultOverlap is the number of words shared between adjacent segments.
	DefaultOverlap = 100
)

// Splitter cuts a transcript into overlapping word windows so that question
// answering can retrieve a bounded amount of context. Splitting is a
// best-effort optimization: Split never fails, it degrades to returning the
// whole text as a single segment.
type Splitter struct {
	size    int
	overlap int
}

// New validates the window geometry up front. An overlap that is not strictly
// smaller than the size would make the window step non-positive, so it is
// rejected here rather than looping forever later.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("segment size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("segment overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("segment overlap (%d) must be smaller than segment size (%d)", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Default returns a splitter with the stock window geometry.
func Default() *Splitter {
	s, _ := New(DefaultSize, DefaultOverlap)
	return s
}

// Split tokenizes text by whitespace and emits successive windows of size
// words advancing by size-overlap. Texts shorter than one window come back as
// a single unpadded segment; blank input yields nil.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) < s.size {
		return []string{text}
	}

	step := s.size - s.overlap
	var segments []string
	for i := 0; i < len(words); i += step {
		end := i + s.size
		if end > len(words) {
			end = len(words)
		}
		segments = append(segments, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return segments
}
