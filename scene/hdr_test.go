package scene

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatHDR(w, h int, pixel [4]byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", h, w)
	for i := 0; i < w*h; i++ {
		buf.Write(pixel[:])
	}
	return buf.Bytes()
}

func TestDecodeHDRFlat(t *testing.T) {
	// mantissa 128 with exponent 129 is exactly 1.0
	img, err := DecodeHDR(bytes.NewReader(flatHDR(3, 2, [4]byte{128, 64, 0, 129})))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	require.Len(t, img.Pix, 3*2*3)
	assert.InDelta(t, 1.0, img.Pix[0], 1e-6)
	assert.InDelta(t, 0.5, img.Pix[1], 1e-6)
	assert.InDelta(t, 0.0, img.Pix[2], 1e-6)

	tex := img.ToneMap(1)
	assert.Equal(t, 3, tex.Width)
	assert.True(t, tex.FlipY)
	// 1/(1+1) = 0.5, then gamma 1/2.2
	assert.Equal(t, byte(186), tex.Pixels[0])
	assert.Equal(t, byte(255), tex.Pixels[3])
}

func TestDecodeHDRRunLength(t *testing.T) {
	const w = 8
	var buf bytes.Buffer
	buf.WriteString("#?RADIANCE\n\n-Y 1 +X 8\n")
	buf.Write([]byte{2, 2, 0, w})
	// each channel is one run of w identical bytes
	for _, v := range []byte{128, 128, 128, 129} {
		buf.Write([]byte{128 + w, v})
	}

	img, err := DecodeHDR(&buf)
	require.NoError(t, err)
	require.Len(t, img.Pix, w*3)
	for _, v := range img.Pix {
		assert.InDelta(t, 1.0, v, 1e-6)
	}
}

func TestDecodeHDRRejectsOtherFormats(t *testing.T) {
	_, err := DecodeHDR(bytes.NewReader([]byte("\x89PNG\r\n")))
	assert.ErrorIs(t, err, errHDRFormat)
}

func TestDecodeHDRRejectsHugeHeader(t *testing.T) {
	for _, res := range []string{"-Y 100000 +X 100000", "-Y 1 +X 20000", "-Y 16384 +X 16384"} {
		data := "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n" + res + "\n"
		_, err := DecodeHDR(bytes.NewReader([]byte(data)))
		assert.ErrorIs(t, err, errHDRTooLarge, res)
	}
}
