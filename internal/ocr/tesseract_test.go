package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textImage renders lines of black text on white, scaled up for Tesseract.
func textImage(lines []string, scale int) *image.Gray {
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	small := image.NewGray(image.Rect(0, 0, maxLen*7+40, len(lines)*16+30))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	for i, l := range lines {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(20, 20+i*16),
		}
		d.DrawString(l)
	}

	b := small.Bounds()
	big := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < big.Bounds().Dy(); y++ {
		for x := 0; x < big.Bounds().Dx(); x++ {
			big.SetGray(x, y, small.GrayAt(x/scale, y/scale))
		}
	}
	return big
}

// skipIfNoTesseract skips when the engine or its language data is missing.
func skipIfNoTesseract(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") ||
		strings.Contains(msg, "language") || strings.Contains(msg, "init") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "regseg-ocr-*.png"))
	require.NoError(t, err)
	return matches
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t\n  \n", ""},
		{"blank lines removed", "ACME Corp\n\n  \n123 Main St\n", "ACME Corp\n123 Main St"},
		{"inner spacing kept", "  Name  Inc\nPhone  555\n\n", "Name  Inc\nPhone  555"},
		{"form feed trailer", "Line one\n\f", "Line one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestRecognizerFunc(t *testing.T) {
	var r Recognizer = RecognizerFunc(func(ctx context.Context, img image.Image) (string, error) {
		return "text", nil
	})
	got, err := r.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)
	assert.Equal(t, "text", got)
}

func TestNewTesseract_Defaults(t *testing.T) {
	tess := NewTesseract()
	assert.Equal(t, "eng", tess.Language)
	assert.Equal(t, 6, tess.PageSegMode)
	assert.Equal(t, 30*time.Second, tess.Timeout)
}

func TestTesseract_Recognize(t *testing.T) {
	dir := t.TempDir()
	tess := NewTesseract()
	tess.TempDir = dir

	text, err := tess.Recognize(context.Background(), textImage([]string{"HELLO WORLD", "", "TEXAS 75201"}, 4))
	skipIfNoTesseract(t, err)
	require.NoError(t, err)

	assert.NotContains(t, text, "\n\n", "blank lines are removed")
	assert.Equal(t, strings.TrimSpace(text), text)
	assert.Contains(t, strings.ToUpper(text), "HELLO")
	assert.Empty(t, tempFiles(t, dir), "temp file removed after success")
}

func TestTesseract_InvalidLanguageCleansUp(t *testing.T) {
	dir := t.TempDir()
	tess := &Tesseract{Language: "not-a-language", PageSegMode: DefaultPageSegMode, TempDir: dir}

	_, err := tess.Recognize(context.Background(), textImage([]string{"X"}, 2))
	assert.Error(t, err)
	assert.Empty(t, tempFiles(t, dir), "temp file removed after failure")
}

func TestTesseract_TimeoutCleansUp(t *testing.T) {
	dir := t.TempDir()
	tess := NewTesseract()
	tess.TempDir = dir

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tess.Recognize(ctx, textImage([]string{"TIMEOUT"}, 4))
	if err != nil && !strings.Contains(err.Error(), "timed out") {
		skipIfNoTesseract(t, err)
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool { return len(tempFiles(t, dir)) == 0 },
		30*time.Second, 50*time.Millisecond, "temp file removed once the abandoned call ends")
}

func TestTesseract_UnwritableTempDir(t *testing.T) {
	tess := NewTesseract()
	tess.TempDir = filepath.Join(t.TempDir(), "missing")

	_, err := tess.Recognize(context.Background(), textImage([]string{"X"}, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create temp file")
	_, statErr := os.Stat(tess.TempDir)
	assert.True(t, os.IsNotExist(statErr))
}
