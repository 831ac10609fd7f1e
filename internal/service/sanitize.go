package service

import (
	"strings"
	"unicode/utf8"
)

// markdownStripper removes the formatting markers the model is told not to
// emit but sometimes does anyway.
var markdownStripper = strings.NewReplacer("**", "", "*", "", "`", "")

// punctReplacer maps typographic punctuation to plain ASCII so downstream
// clients with limited encodings render replies intact. Emojis pass through.
var punctReplacer = strings.NewReplacer(
	"’", "'", "‘", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"…", "...", " ", " ",
	"‐", "-", "‑", "-",
	"‒", "-", "―", "-",
)

// Sanitize normalizes a model reply for delivery: markdown markers removed,
// typographic punctuation mapped to ASCII, whitespace trimmed, and the result
// capped at max bytes including the ellipsis appended on truncation.
func Sanitize(text string, max int) string {
	text = markdownStripper.Replace(text)
	text = punctReplacer.Replace(text)
	text = strings.TrimSpace(text)

	if max > 3 && len(text) > max {
		cut := max - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
