package imageextract

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmykToRGB(t *testing.T) {
	tests := []struct {
		name       string
		c, m, y, k byte
		wantR      byte
		wantG      byte
		wantB      byte
	}{
		{name: "all zero is white", c: 0, m: 0, y: 0, k: 0, wantR: 255, wantG: 255, wantB: 255},
		{name: "full black key is black", c: 0, m: 0, y: 0, k: 255, wantR: 0, wantG: 0, wantB: 0},
		{name: "full cyan removes red", c: 255, m: 0, y: 0, k: 0, wantR: 0, wantG: 255, wantB: 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := cmykToRGB(tt.c, tt.m, tt.y, tt.k)
			assert.Equal(t, tt.wantR, r)
			assert.Equal(t, tt.wantG, g)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestSamplesToImageGray(t *testing.T) {
	// 2x1 grayscale image, 8bpc: one black pixel, one white pixel.
	data := []byte{0x00, 0xFF}
	img, err := samplesToImage(data, 2, 1, 8, 1, "DeviceGray")
	require.NoError(t, err)
	assert.Equal(t, color.Gray{Y: 0}, img.At(0, 0))
	assert.Equal(t, color.Gray{Y: 255}, img.At(1, 0))
}

func TestSamplesToImageRGB16BitDownshift(t *testing.T) {
	// 1x1 RGB image, 16bpc: high byte of each channel is kept.
	data := []byte{0xAB, 0x00, 0xCD, 0x00, 0xEF, 0x00}
	img, err := samplesToImage(data, 1, 1, 16, 3, "DeviceRGB")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xAB, G: 0xCD, B: 0xEF, A: 255}, img.At(0, 0))
}

func TestSamplesToImageTruncatedData(t *testing.T) {
	_, err := samplesToImage([]byte{0x00}, 4, 4, 8, 3, "DeviceRGB")
	assert.Error(t, err)
}

func TestBitmapToGray(t *testing.T) {
	// 4x1 bitmap, MSB first: 1010 -> white, black, white, black.
	data := []byte{0b10100000}
	img, err := bitmapToGray(data, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, color.Gray{Y: 255}, img.At(0, 0))
	assert.Equal(t, color.Gray{Y: 0}, img.At(1, 0))
	assert.Equal(t, color.Gray{Y: 255}, img.At(2, 0))
	assert.Equal(t, color.Gray{Y: 0}, img.At(3, 0))
}

func TestBitmapToGrayTruncatedData(t *testing.T) {
	_, err := bitmapToGray([]byte{}, 8, 2)
	assert.Error(t, err)
}

func TestDoOperatorPatternExtractsNames(t *testing.T) {
	content := []byte("q 1 0 0 1 0 0 cm /Im0 Do Q\nq /Im1 Do Q")
	matches := doOperatorPattern.FindAllSubmatch(content, -1)
	var names []string
	for _, m := range matches {
		names = append(names, string(m[1]))
	}
	assert.Equal(t, []string{"Im0", "Im1"}, names)
}
