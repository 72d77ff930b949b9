// Package canvas rebuilds the full picture of every displayed animation frame
// from partial frame rectangles.
//
// The canvas is addressed bottom-left first: row 0 of Pix is the visually
// lowest row. A fragment whose top edge sits OffsetY rows below the top of the
// canvas therefore starts at row (canvas.Height - fragment.Height) - OffsetY.
// Fragment pixels are expected in the same bottom-up row order.
package canvas

import (
	"errors"
	"fmt"

	"github.com/daanv2/go-webpanim/pkg/assert"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

var (
	ErrDimensionMismatch = errors.New("canvas: pixel buffer does not match dimensions")
	ErrInvalidDimensions = errors.New("canvas: invalid dimensions")
)

// Fragment is one decoded frame rectangle with its placement metadata.
// The compositor never modifies it.
type Fragment struct {
	OffsetX, OffsetY int
	Width, Height    int
	Duration         int // milliseconds
	Blend            webp.WebPMuxAnimBlend
	Dispose          webp.WebPMuxAnimDispose
	Pix              []byte // RGBA8, Width*Height*4 bytes
	HasAlpha         bool
}

// Frame is a snapshot of the canvas. Pix is never shared with the canvas or
// with any other Frame.
type Frame struct {
	Pix       []byte
	Timestamp int // cumulative milliseconds, end of this frame
}

// Canvas holds the running composition of an animation.
type Canvas struct {
	Width, Height int

	pix       []byte
	timestamp int
}

// CheckDimensions reports whether a width x height canvas can be created,
// without allocating it.
func CheckDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > webp.MAX_CANVAS_SIZE || height > webp.MAX_CANVAS_SIZE ||
		uint64(width)*uint64(height) >= webp.MAX_IMAGE_AREA {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

// New returns a fully transparent canvas.
func New(width, height int) (*Canvas, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}

	c := &Canvas{
		Width:  width,
		Height: height,
		pix:    make([]byte, width*height*webp.NUM_CHANNELS),
	}
	c.check()

	return c, nil
}

func (c *Canvas) check() {
	assert.Assert(len(c.pix) == c.Width*c.Height*webp.NUM_CHANNELS, "canvas buffer length")
}

// Timestamp is the sum of the durations of all composited fragments.
func (c *Canvas) Timestamp() int {
	return c.timestamp
}

// Snapshot returns a copy of the current canvas pixels.
func (c *Canvas) Snapshot() []byte {
	out := make([]byte, len(c.pix))
	copy(out, c.pix)
	return out
}

// Reset clears the canvas to transparent and rewinds the timestamp.
func (c *Canvas) Reset() {
	clear(c.pix)
	c.timestamp = 0
}

// Composite applies f to the canvas and returns the resulting frame.
//
// With blending requested and an alpha channel present, f is alpha blended.
// Otherwise its pixels replace the covered area. After the snapshot is taken,
// a fragment disposed to background is cleared from the canvas again.
//
// On error the canvas and timestamp are left untouched.
func (c *Canvas) Composite(f *Fragment) (Frame, error) {
	if err := c.validate(f); err != nil {
		return Frame{}, err
	}

	x, y := c.place(f)
	full := c.isFullFrame(f)

	switch {
	case f.Blend == webp.WEBP_MUX_BLEND && f.HasAlpha:
		c.blend(f, x, y)
	case full:
		copy(c.pix, f.Pix)
	default:
		c.merge(f, x, y)
	}

	frame := Frame{Pix: c.Snapshot()}

	if f.Dispose == webp.WEBP_MUX_DISPOSE_BACKGROUND {
		if full {
			clear(c.pix)
		} else {
			c.zeroFillRect(x, y, f.Width, f.Height)
		}
	}

	c.timestamp += f.Duration
	frame.Timestamp = c.timestamp
	c.check()

	return frame, nil
}

// Overwrite copies f onto the canvas without blending, disposal or timing.
func (c *Canvas) Overwrite(f *Fragment) error {
	if err := c.validate(f); err != nil {
		return err
	}

	x, y := c.place(f)
	c.merge(f, x, y)

	return nil
}

func (c *Canvas) validate(f *Fragment) error {
	if f.Width < 0 || f.Height < 0 || len(f.Pix) != f.Width*f.Height*webp.NUM_CHANNELS {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrDimensionMismatch, len(f.Pix), f.Width, f.Height)
	}
	return nil
}

// place returns the bottom-left based position of f.
func (c *Canvas) place(f *Fragment) (int, int) {
	return f.OffsetX, (c.Height - f.Height) - f.OffsetY
}

// Returns true if the frame covers the full canvas.
func (c *Canvas) isFullFrame(f *Fragment) bool {
	return f.Width == c.Width && f.Height == c.Height && f.OffsetX == 0 && f.OffsetY == 0
}

// span clips a fragment row of the given width starting at column x.
// It returns the first source column, the first canvas column and the number
// of pixels to visit, which is zero or less when nothing overlaps.
func (c *Canvas) span(x, width int) (srcX, dstX, n int) {
	dstX = max(x, 0)
	end := min(x+width, c.Width)
	return dstX - x, dstX, end - dstX
}

func (c *Canvas) merge(f *Fragment, x, y int) {
	srcX, dstX, n := c.span(x, f.Width)
	if n <= 0 {
		return
	}

	stride := c.Width * webp.NUM_CHANNELS
	srcStride := f.Width * webp.NUM_CHANNELS
	for row := 0; row < f.Height; row++ {
		cy := y + row
		if cy < 0 || cy >= c.Height {
			continue
		}
		dst := cy*stride + dstX*webp.NUM_CHANNELS
		src := row*srcStride + srcX*webp.NUM_CHANNELS
		copy(c.pix[dst:dst+n*webp.NUM_CHANNELS], f.Pix[src:src+n*webp.NUM_CHANNELS])
	}
}

func (c *Canvas) blend(f *Fragment, x, y int) {
	srcX, dstX, n := c.span(x, f.Width)
	if n <= 0 {
		return
	}

	stride := c.Width * webp.NUM_CHANNELS
	srcStride := f.Width * webp.NUM_CHANNELS
	for row := 0; row < f.Height; row++ {
		cy := y + row
		if cy < 0 || cy >= c.Height {
			continue
		}
		dst := c.pix[cy*stride+dstX*webp.NUM_CHANNELS:]
		src := f.Pix[row*srcStride+srcX*webp.NUM_CHANNELS:]
		for i := 0; i < n*webp.NUM_CHANNELS; i += webp.NUM_CHANNELS {
			blendPixel(dst[i:i+4], src[i:i+4])
		}
	}
}

// blendPixel blends the non-premultiplied src over dst in place. Divisions
// truncate and the resulting alpha is not clamped.
func blendPixel(dst, src []byte) {
	a := int(src[3])
	switch a {
	case 0:
		return
	case 0xff:
		copy(dst, src)
		return
	}

	inv := 0xff - a
	dst[0] = byte((int(src[0])*a + int(dst[0])*inv) / 0xff)
	dst[1] = byte((int(src[1])*a + int(dst[1])*inv) / 0xff)
	dst[2] = byte((int(src[2])*a + int(dst[2])*inv) / 0xff)
	dst[3] = byte(a + (int(dst[3])*inv)/0xff)
}

// Clear given frame rectangle to transparent.
func (c *Canvas) zeroFillRect(x, y, width, height int) {
	_, dstX, n := c.span(x, width)
	if n <= 0 {
		return
	}

	stride := c.Width * webp.NUM_CHANNELS
	for row := 0; row < height; row++ {
		cy := y + row
		if cy < 0 || cy >= c.Height {
			continue
		}
		start := cy*stride + dstX*webp.NUM_CHANNELS
		clear(c.pix[start : start+n*webp.NUM_CHANNELS])
	}
}
