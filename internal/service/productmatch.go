package service

import (
	"strings"

	"github.com/botfactory/botfactory/internal/domain/knowledge"
)

// genericWords carry no product signal and never score on a body match.
var genericWords = map[string]bool{
	"mahsulot": true, "narx": true, "som": true, "dollar": true,
	"paket": true, "zip": true, "rasm": true, "tavsif": true, "haqida": true,
}

// Suggestion is the single best product image to attach to a reply.
type Suggestion struct {
	MediaRef string
	Caption  string
}

// MatchProduct scores product entries against the user's message and returns
// the best one with an image, or ok=false when nothing reaches threshold.
// Scoring: a message word inside the product name counts 10, inside the
// source name 5, anywhere in the body 1 (generic words excluded). Words of
// two characters or fewer are ignored.
func MatchProduct(entries []knowledge.Entry, message string, threshold int) (Suggestion, bool) {
	words := significantWords(message)
	if len(words) == 0 {
		return Suggestion{}, false
	}

	var best *knowledge.Entry
	bestScore := 0

	for i := range entries {
		e := &entries[i]
		if e.Kind != knowledge.KindProduct || mediaRef(e) == "" {
			continue
		}

		name := strings.ToLower(e.ProductName())
		source := strings.ToLower(e.SourceName)
		body := strings.ToLower(e.Content)

		score := 0
		for _, w := range words {
			if name != "" && strings.Contains(name, w) {
				score += 10
			}
			if source != "" && strings.Contains(source, w) {
				score += 5
			}
			if !genericWords[w] && strings.Contains(body, w) {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	if best == nil || bestScore < threshold {
		return Suggestion{}, false
	}

	caption := best.SourceName
	if caption == "" {
		caption = best.ProductName()
	}
	if caption == "" {
		caption = "Mahsulot"
	}
	return Suggestion{MediaRef: mediaRef(best), Caption: "📦 " + caption}, true
}

// mediaRef returns the entry's image reference: the media field when set,
// otherwise an http "Rasm:" line inside the content.
func mediaRef(e *knowledge.Entry) string {
	if e.MediaRef != "" {
		return e.MediaRef
	}
	for _, line := range strings.Split(e.Content, "\n") {
		if rest, ok := strings.CutPrefix(line, "Rasm:"); ok {
			ref := strings.TrimSpace(rest)
			if strings.Contains(ref, "http") {
				return ref
			}
		}
	}
	return ""
}

// significantWords lowercases the message and drops words of two characters
// or fewer.
func significantWords(message string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		w = strings.TrimSpace(w)
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}
