// Package speech defines the speech-to-text port (interface).
package speech

import "context"

// Transcriber converts a voice recording at mediaURL into text in the given
// language. Failure yields a localized "could not understand" reply upstream,
// never a crash.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL, language string) (string, error)
}
