package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

var (
	errHDRFormat   = errors.New("not a radiance hdr file")
	errHDRTooLarge = errors.New("hdr image too large")
)

// Size limits checked before the pixel buffer is allocated.
const (
	maxHDRSide   = 16384
	maxHDRPixels = 16384 * 8192
)

// HDRImage is a decoded Radiance RGBE image in linear float RGB.
type HDRImage struct {
	Width, Height int
	Pix           []float32 // 3 floats per pixel, top row first
}

// LoadHDRTexture decodes a Radiance .hdr file and tone maps it to RGBA8.
func LoadHDRTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hdr %q: %w", path, err)
	}
	defer f.Close()

	img, err := DecodeHDR(f)
	if err != nil {
		return nil, fmt.Errorf("decode hdr %q: %w", path, err)
	}
	tex := img.ToneMap(1.0)
	tex.Name = path
	return tex, nil
}

// DecodeHDR reads the header, resolution string and scanlines. Both flat and
// new-style run-length encoded scanlines are accepted.
func DecodeHDR(r io.Reader) (*HDRImage, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if !strings.HasPrefix(magic, "#?") {
		return nil, errHDRFormat
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != "32-bit_rle_rgbe" {
			return nil, fmt.Errorf("unsupported pixel format %q", v)
		}
	}

	res, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read resolution: %w", err)
	}
	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(res), "-Y %d +X %d", &h, &w); err != nil {
		return nil, fmt.Errorf("unsupported resolution %q: %w", strings.TrimSpace(res), err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	if w > maxHDRSide || h > maxHDRSide || w*h > maxHDRPixels {
		return nil, fmt.Errorf("%w: %dx%d", errHDRTooLarge, w, h)
	}

	img := &HDRImage{Width: w, Height: h, Pix: make([]float32, w*h*3)}
	scan := make([]byte, w*4)
	for y := 0; y < h; y++ {
		if err := readScanline(br, scan, w); err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := img.Pix[y*w*3:]
		for x := 0; x < w; x++ {
			r, g, b := rgbeToFloat(scan[x*4], scan[x*4+1], scan[x*4+2], scan[x*4+3])
			row[x*3], row[x*3+1], row[x*3+2] = r, g, b
		}
	}
	return img, nil
}

func readScanline(br *bufio.Reader, scan []byte, w int) error {
	var head [4]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return err
	}
	if w < 8 || w > 0x7fff || head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(scan, head[:])
		_, err := io.ReadFull(br, scan[4:])
		return err
	}
	if int(head[2])<<8|int(head[3]) != w {
		return errors.New("scanline width mismatch")
	}

	// RLE data is stored one channel at a time.
	for ch := 0; ch < 4; ch++ {
		for x := 0; x < w; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > w {
					return errors.New("run overflows scanline")
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < n; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += n
				continue
			}
			n := int(count)
			if n == 0 || x+n > w {
				return errors.New("bad literal run")
			}
			for i := 0; i < n; i++ {
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				scan[(x+i)*4+ch] = v
			}
			x += n
		}
	}
	return nil
}

func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	f := float32(math.Ldexp(1, int(e)-(128+8)))
	return float32(r) * f, float32(g) * f, float32(b) * f
}

// ToneMap applies Reinhard tone mapping and sRGB-ish gamma.
func (img *HDRImage) ToneMap(exposure float32) *Texture {
	pix := make([]byte, img.Width*img.Height*4)
	for i := 0; i < img.Width*img.Height; i++ {
		for c := 0; c < 3; c++ {
			v := img.Pix[i*3+c] * exposure
			v = v / (1 + v)
			v = float32(math.Pow(float64(v), 1/2.2))
			pix[i*4+c] = byte(v*255 + 0.5)
		}
		pix[i*4+3] = 255
	}
	return &Texture{Width: img.Width, Height: img.Height, Pixels: pix, FlipY: true}
}
