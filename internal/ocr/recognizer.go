package ocr

import (
	"context"
	"image"
	"strings"
)

// Recognizer turns a cropped text region into its recognized text.
//
// Implementations must be safe to call from multiple goroutines and should
// return once ctx is done. The returned text should already be cleaned with
// CleanText.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecognizerFunc adapts an ordinary function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

// Recognize calls f(ctx, img).
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// CleanText drops whitespace-only lines from raw OCR output and trims the
// result. Remaining lines keep their inner spacing.
func CleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
