package webpanim

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/daanv2/go-webpanim/pkg/canvas"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

// Animation is a decoded animation.
type Animation struct {
	Frames        []Frame
	Width, Height int

	// LoopCount is the number of times the animation is played.
	// A LoopCount of 0 means to loop forever.
	LoopCount int

	// Background is the canvas colour the file suggests. Frames are not
	// composited over it.
	Background color.NRGBA
}

// Frame is one composited canvas. Pix holds RGBA8 rows, bottom row first.
type Frame struct {
	canvas.Frame

	width, height int
	duration      int
}

// Duration is the display time of the frame.
func (f Frame) Duration() time.Duration {
	return time.Duration(f.duration) * time.Millisecond
}

// Image returns a copy of the frame with the top row first.
func (f Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	stride := f.width * webp.NUM_CHANNELS
	for y := 0; y < f.height; y++ {
		src := (f.height - 1 - y) * stride
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], f.Pix[src:src+stride])
	}
	return img
}

// Animate calls fn on each frame in order, waiting for the frame's duration
// before moving on, until LoopCount is reached or ctx is done.
func (anim *Animation) Animate(ctx context.Context, fn func(image.Image) error) error {
	if len(anim.Frames) == 0 {
		return nil
	}

	images := make([]image.Image, len(anim.Frames))
	for i, f := range anim.Frames {
		images[i] = f.Image()
	}

	for i := 0; anim.LoopCount == 0 || i < anim.LoopCount; i++ {
		for f, frame := range anim.Frames {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			err := fn(images[f])
			if err != nil {
				return err
			}
			delay := time.NewTimer(frame.Duration())
			select {
			case <-ctx.Done():
				delay.Stop()
				return ctx.Err()
			case <-delay.C:
			}
		}
	}
	return nil
}
