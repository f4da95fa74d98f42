package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinarize(t *testing.T) {
	src := newGray(256, 1, 0)
	for x := 0; x < 256; x++ {
		src.Pix[x] = uint8(x)
	}

	tests := []struct {
		name      string
		threshold uint8
		wantInk   int
	}{
		{"pre-binarized", 0, 1},
		{"default", 60, 61},
		{"every level boundary", 127, 128},
		{"all ink", 255, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := Binarize(src, tt.threshold)
			assert.Equal(t, tt.wantInk, InkCount(mask))
			assert.Equal(t, uint8(255), mask.Pix[tt.threshold], "threshold value itself is ink")
			if int(tt.threshold) < 255 {
				assert.Equal(t, uint8(0), mask.Pix[int(tt.threshold)+1], "one above threshold is background")
			}
		})
	}
}

func TestBinarize_OutputIsStrictlyBinary(t *testing.T) {
	src := newGray(16, 16, 0)
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	for _, v := range Binarize(src, 100).Pix {
		assert.True(t, v == 0 || v == 255)
	}
}
