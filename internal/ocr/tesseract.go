package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/otiai10/gosseract/v2"
)

// Defaults for Tesseract.
const (
	DefaultLanguage    = "eng"
	DefaultPageSegMode = int(gosseract.PSM_SINGLE_BLOCK)
	DefaultTimeout     = 30 * time.Second
)

// Tesseract recognizes text with the Tesseract engine through gosseract.
//
// Every call hands the region to Tesseract through its own temporary PNG,
// named with a random UUID so concurrent pipelines never share a file. The
// file is removed once Tesseract is done with it, whether recognition
// succeeded, failed or timed out.
type Tesseract struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string
	// PageSegMode is the Tesseract page segmentation mode (6 = single block).
	PageSegMode int
	// Timeout bounds a single recognition; zero means no limit beyond ctx.
	Timeout time.Duration
	// TempDir holds the hand-off files; empty means os.TempDir().
	TempDir string
}

// NewTesseract returns a Tesseract recognizer with the default settings.
func NewTesseract() *Tesseract {
	return &Tesseract{
		Language:    DefaultLanguage,
		PageSegMode: DefaultPageSegMode,
		Timeout:     DefaultTimeout,
	}
}

type ocrResult struct {
	text string
	err  error
}

// Recognize runs Tesseract on img and returns the cleaned text.
//
// When the timeout or ctx expires first, Recognize returns the context error
// immediately; the abandoned Tesseract call finishes in the background and
// still removes its temporary file.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	path, err := t.writeTemp(img)
	if err != nil {
		return "", err
	}

	done := make(chan ocrResult, 1)
	go func() {
		text, err := t.run(path)
		// Remove before reporting so callers never observe the file after
		// Recognize returns a result.
		os.Remove(path)
		done <- ocrResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return CleanText(res.text), nil
	case <-ctx.Done():
		return "", fmt.Errorf("OCR timed out: %w", ctx.Err())
	}
}

// writeTemp encodes img as PNG into a new, uniquely named file.
func (t *Tesseract) writeTemp(img image.Image) (string, error) {
	dir := t.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("regseg-ocr-%s.png", uuid.NewString()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}
	return path, nil
}

func (t *Tesseract) run(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	lang := t.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(t.PageSegMode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
