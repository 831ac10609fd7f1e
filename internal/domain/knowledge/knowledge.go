// Package knowledge defines tenant-supplied reference material. Entries are
// managed by the dashboard and are read-only to this service.
package knowledge

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Kind classifies a knowledge entry.
type Kind string

const (
	KindText    Kind = "text"
	KindProduct Kind = "product"
	KindImage   Kind = "image"
)

// Entry is one piece of tenant reference material.
type Entry struct {
	ID         string    `json:"id"`
	BotID      string    `json:"bot_id"`
	Kind       Kind      `json:"kind"`
	SourceName string    `json:"source_name,omitempty"`
	Content    string    `json:"content"`
	MediaRef   string    `json:"media_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductName extracts the product name from a product entry's content
// ("Mahsulot: <name>" line), falling back to the source name.
func (e *Entry) ProductName() string {
	for _, line := range strings.Split(e.Content, "\n") {
		if rest, ok := strings.CutPrefix(line, "Mahsulot:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return e.SourceName
}

// Compose concatenates entries into a single prompt-ready text block, capped
// at budget characters. Product entries are fenced so the model can locate
// structured product data; image entries contribute a one-line description.
func Compose(entries []Entry, budget int) string {
	var b strings.Builder
	for _, e := range entries {
		switch e.Kind {
		case KindProduct:
			b.WriteString("=== MAHSULOT MA'LUMOTI ===\n")
			b.WriteString(e.Content)
			b.WriteString("\n=== MAHSULOT OXIRI ===\n\n")
		case KindImage:
			b.WriteString("Rasm: ")
			if e.SourceName != "" {
				b.WriteString(e.SourceName)
			} else {
				b.WriteString("Yuklangan rasm")
			}
			b.WriteString(" - mahsulot/xizmat haqidagi vizual ma'lumot.\n\n")
		default:
			b.WriteString(e.Content)
			b.WriteString("\n\n")
		}
	}
	text := strings.TrimSpace(b.String())
	if budget > 0 && len(text) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
