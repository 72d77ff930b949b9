package dec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/daanv2/go-webpanim/pkg/container"
	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"golang.org/x/image/draw"
	xwebp "golang.org/x/image/webp"
)

// Decoder turns a single WebP image or frame fragment into RGBA8 pixels.
type Decoder struct {
	Options webp.WebPDecoderOptions
}

// NewDecoder returns a Decoder using options.
func NewDecoder(options webp.WebPDecoderOptions) *Decoder {
	return &Decoder{Options: options}
}

// DecodeFragment decodes fragment into non-premultiplied RGBA8 pixels.
//
// width and height are what the container declared for the frame; the
// returned dimensions are the ones found in the bitstream and may differ.
func (d *Decoder) DecodeFragment(fragment []byte, width, height int) ([]byte, int, int, error) {
	data := fragment
	if !container.IsWebP(fragment) {
		features, err := GetFeatures(fragment)
		if err != nil {
			return nil, 0, 0, err
		}
		data = wrapFragment(fragment, features)
	}

	m, err := xwebp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("dec: decoding %dx%d fragment: %w", width, height, err)
	}

	out := toNRGBA(m)
	if d.Options.Flip {
		flipRows(out)
	}

	return out.Pix, out.Rect.Dx(), out.Rect.Dy(), nil
}

// DecodeRGBA decodes a whole WebP file with default options.
func DecodeRGBA(data []byte) ([]byte, int, int, error) {
	var d Decoder
	return d.DecodeFragment(data, 0, 0)
}

// wrapFragment puts the frame chunks in a minimal file. An ALPH chunk is only
// accepted behind a VP8X chunk carrying the alpha flag and the frame size.
func wrapFragment(fragment []byte, features webp.WebPBitstreamFeatures) []byte {
	size := webp.TAG_SIZE + len(fragment)
	withVP8X := features.HasAlpha && features.Format == webp.WEBP_FORMAT_LOSSY
	if withVP8X {
		size += webp.CHUNK_HEADER_SIZE + webp.VP8X_CHUNK_SIZE
	}

	out := make([]byte, 0, webp.CHUNK_HEADER_SIZE+size)
	out = append(out, webp.FOURCC_RIFF[:]...)
	out = endian32(out, uint32(size))
	out = append(out, webp.FOURCC_WEBP[:]...)

	if withVP8X {
		out = append(out, webp.FOURCC_VP8X[:]...)
		out = endian32(out, webp.VP8X_CHUNK_SIZE)
		var payload [webp.VP8X_CHUNK_SIZE]byte
		payload[0] = byte(webp.ALPHA_FLAG)
		endian.PutLE24(payload[4:], features.Width-1)
		endian.PutLE24(payload[7:], features.Height-1)
		out = append(out, payload[:]...)
	}

	return append(out, fragment...)
}

func endian32(b []byte, v uint32) []byte {
	var buf [4]byte
	endian.PutLE32(buf[:], v)
	return append(b, buf[:]...)
}

// toNRGBA returns m as a tightly packed NRGBA image with a zero origin.
// YCbCr based images are converted directly so that alpha stays
// non-premultiplied.
func toNRGBA(m image.Image) *image.NRGBA {
	b := m.Bounds()

	if n, ok := m.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch m := m.(type) {
	case *image.NYCbCrA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi, ci := m.YOffset(x, y), m.COffset(x, y)
				r, g, bl := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
				i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = r, g, bl
				out.Pix[i+3] = m.A[m.AOffset(x, y)]
			}
		}
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi, ci := m.YOffset(x, y), m.COffset(x, y)
				r, g, bl := color.YCbCrToRGB(m.Y[yi], m.Cb[ci], m.Cr[ci])
				i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
				out.Pix[i+0], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = r, g, bl, 0xff
			}
		}
	default:
		draw.Draw(out, out.Bounds(), m, b.Min, draw.Src)
	}
	return out
}

// flipRows reverses the row order of m in place.
func flipRows(m *image.NRGBA) {
	h := m.Rect.Dy()
	tmp := make([]byte, m.Stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := m.Pix[top*m.Stride : (top+1)*m.Stride]
		b := m.Pix[bottom*m.Stride : (bottom+1)*m.Stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
