package rank

import (
	"sort"
	"strings"
)

// DefaultTopK is the number of segments handed to the generation prompt.
const DefaultTopK = 3

// Select returns the k transcript segments most relevant to the question,
// scored by distinct lowercase word overlap plus a bonus when the whole
// question appears verbatim in a segment. Ties keep the original transcript
// order. Segments come back regardless of score: the QA prompt instructs the
// model to say a topic is not covered, so even zero-score context is handed
// over rather than filtered here. An empty segment slice yields nil, which
// callers treat as "nothing processed yet" and short-circuit before any
// generation call.
func Select(question string, segments []string, k int) []string {
	if len(segments) == 0 || k <= 0 {
		return nil
	}

	qLower := strings.ToLower(strings.TrimSpace(question))
	qWords := wordSet(qLower)

	type scored struct {
		index int
		score int
	}
	scores := make([]scored, len(segments))
	for i, seg := range segments {
		segLower := strings.ToLower(seg)
		s := overlap(qWords, wordSet(segLower))
		if qLower != "" && strings.Contains(segLower, qLower) {
			s++
		}
		scores[i] = scored{index: i, score: s}
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]string, 0, k)
	for _, s := range scores[:k] {
		out = append(out, segments[s.index])
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
