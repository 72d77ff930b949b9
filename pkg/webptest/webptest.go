// Package webptest builds small WebP files in memory for tests.
//
// The lossless bitstreams it writes encode a single colour with one-symbol
// Huffman codes, so they decode without spending a bit per pixel.
package webptest

import (
	_ "embed"
	"image/color"

	"github.com/daanv2/go-webpanim/pkg/assert"
	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

// LossyAlpha is a 16x16 still image: VP8X with the alpha flag, an ALPH chunk
// and a lossy VP8 bitstream.
//
//go:embed testdata/lossy_alpha.webp
var LossyAlpha []byte

// Frame describes one ANMF chunk. X and Y must be even.
type Frame struct {
	X, Y          int
	Width, Height int
	Duration      int
	Dispose       webp.WebPMuxAnimDispose
	Blend         webp.WebPMuxAnimBlend
	Color         color.NRGBA
}

// Chunk returns tag, size, payload and the pad byte when the size is odd.
func Chunk(tag string, payload []byte) []byte {
	assert.Assert(uint64(len(payload)) <= uint64(webp.MAX_CHUNK_PAYLOAD), "chunk payload too large")
	out := make([]byte, webp.CHUNK_HEADER_SIZE, webp.CHUNK_HEADER_SIZE+len(payload)+1)
	copy(out, tag)
	endian.PutLE32(out[webp.TAG_SIZE:], uint32(len(payload)))
	out = append(out, payload...)
	if len(payload)&1 == 1 {
		out = append(out, 0)
	}
	return out
}

// RIFF wraps chunks in a "RIFF" .... "WEBP" header.
func RIFF(chunks ...[]byte) []byte {
	out := make([]byte, webp.RIFF_HEADER_SIZE)
	copy(out, "RIFF")
	copy(out[8:], "WEBP")
	for _, c := range chunks {
		out = append(out, c...)
	}
	endian.PutLE32(out[webp.TAG_SIZE:], uint32(len(out)-webp.CHUNK_HEADER_SIZE))
	return out
}

// VP8X returns a VP8X chunk for a canvas of width x height.
func VP8X(flags webp.WebPFeatureFlags, width, height int) []byte {
	payload := make([]byte, webp.VP8X_CHUNK_SIZE)
	payload[0] = byte(flags)
	endian.PutLE24(payload[4:], width-1)
	endian.PutLE24(payload[7:], height-1)
	return Chunk("VP8X", payload)
}

// ANIM returns an ANIM chunk. bgcolor is stored in libwebp's BGRA byte order.
func ANIM(bgcolor uint32, loopCount int) []byte {
	payload := make([]byte, webp.ANIM_CHUNK_SIZE)
	endian.PutLE32(payload, bgcolor)
	endian.PutLE16(payload[4:], loopCount)
	return Chunk("ANIM", payload)
}

// ANMF returns an ANMF chunk holding the frame header of f followed by sub.
func ANMF(f Frame, sub ...[]byte) []byte {
	payload := make([]byte, webp.ANMF_CHUNK_SIZE)
	endian.PutLE24(payload[0:], f.X/2)
	endian.PutLE24(payload[3:], f.Y/2)
	endian.PutLE24(payload[6:], f.Width-1)
	endian.PutLE24(payload[9:], f.Height-1)
	endian.PutLE24(payload[12:], f.Duration)
	var bits byte
	if f.Dispose == webp.WEBP_MUX_DISPOSE_BACKGROUND {
		bits |= 1
	}
	if f.Blend == webp.WEBP_MUX_NO_BLEND {
		bits |= 2
	}
	payload[15] = bits
	for _, s := range sub {
		payload = append(payload, s...)
	}
	return Chunk("ANMF", payload)
}

// VP8L returns a VP8L chunk filled with c.
func VP8L(width, height int, c color.NRGBA) []byte {
	return Chunk("VP8L", SolidVP8L(width, height, c))
}

// Still returns a simple-format file: a lone VP8L chunk filled with c.
func Still(width, height int, c color.NRGBA) []byte {
	return RIFF(VP8L(width, height, c))
}

// Animation returns an animated file with one solid lossless frame per entry
// of frames. The alpha flag is always set.
func Animation(width, height, loopCount int, frames ...Frame) []byte {
	chunks := [][]byte{
		VP8X(webp.ANIMATION_FLAG|webp.ALPHA_FLAG, width, height),
		ANIM(0xffffffff, loopCount),
	}
	for _, f := range frames {
		chunks = append(chunks, ANMF(f, VP8L(f.Width, f.Height, f.Color)))
	}
	return RIFF(chunks...)
}

// SolidVP8L returns a VP8L bitstream (without chunk header) whose pixels all
// equal c.
func SolidVP8L(width, height int, c color.NRGBA) []byte {
	var w bitWriter

	w.write(webp.VP8L_MAGIC_BYTE, 8)
	w.write(uint32(width-1), webp.VP8L_IMAGE_SIZE_BITS)
	w.write(uint32(height-1), webp.VP8L_IMAGE_SIZE_BITS)
	if c.A != 0xff {
		w.write(1, 1)
	} else {
		w.write(0, 1)
	}
	w.write(webp.VP8L_VERSION, webp.VP8L_VERSION_BITS)

	w.write(0, 1) // no transform
	w.write(0, 1) // no colour cache
	w.write(0, 1) // no meta Huffman image

	// green, red, blue, alpha and distance codes, one symbol each.
	for _, sym := range []uint8{c.G, c.R, c.B, c.A, 0} {
		w.write(1, 1) // simple code
		w.write(0, 1) // one symbol
		w.write(1, 1) // 8-bit symbol
		w.write(uint32(sym), 8)
	}

	return w.bytes()
}

type bitWriter struct {
	buf   []byte
	acc   uint64
	nBits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.acc |= uint64(v&(1<<n-1)) << w.nBits
	w.nBits += n
	for w.nBits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nBits -= 8
	}
}

func (w *bitWriter) bytes() []byte {
	out := w.buf
	if w.nBits > 0 {
		out = append(out, byte(w.acc))
	}
	return out
}
