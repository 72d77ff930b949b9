// Package webpanim decodes animated WebP files into fully composited frames.
//
// Every returned frame is the complete canvas as it must be displayed, with
// the partial frame rectangles of the file already blended or copied onto
// the previous state and disposed as the file requests.
package webpanim

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/daanv2/go-webpanim/pkg/canvas"
	"github.com/daanv2/go-webpanim/pkg/config"
	"github.com/daanv2/go-webpanim/pkg/container"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

// DecodeAnimation decodes every frame of data. A nil conf uses config.New.
//
// Frames that fail to decode are logged and left out; the timestamps of the
// remaining frames do not include their durations. A file without frames
// yields an Animation with no Frames and a nil error.
func DecodeAnimation(data []byte, conf *config.Config) (*Animation, error) {
	conf, err := prepare(data, conf)
	if err != nil {
		return nil, err
	}

	dmux, err := conf.Demux(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureProbeFailed, err)
	}
	defer release(conf.Logger, dmux)

	width, height, err := canvasSize(dmux)
	if err != nil {
		return nil, err
	}

	anim := &Animation{
		Width:      width,
		Height:     height,
		LoopCount:  int(dmux.GetI(webp.WEBP_FF_LOOP_COUNT)),
		Background: background(dmux.GetI(webp.WEBP_FF_BACKGROUND_COLOR)),
	}

	var iter webp.WebPIterator
	if !dmux.GetFrame(1, &iter) {
		conf.Logger.Debug("no frames found", "canvas_width", width, "canvas_height", height)
		return anim, nil
	}

	// Only allocated once there is a frame to draw.
	c, err := canvas.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureProbeFailed, err)
	}

	conf.Logger.Debug("decoding animation",
		"frames", dmux.GetI(webp.WEBP_FF_FRAME_COUNT),
		"canvas_width", c.Width,
		"canvas_height", c.Height,
		"loop_count", anim.LoopCount)

	for {
		previous := c.Timestamp()
		frame, err := compositeFragment(conf.Decoder, c, &iter)
		if err != nil {
			logSkipped(conf.Logger, &iter, err)
		} else {
			anim.Frames = append(anim.Frames, Frame{
				Frame:    frame,
				width:    c.Width,
				height:   c.Height,
				duration: frame.Timestamp - previous,
			})
		}

		if conf.MaxFrames > 0 && iter.FrameNum >= conf.MaxFrames {
			break
		}
		if !dmux.NextFrame(&iter) {
			break
		}
	}

	return anim, nil
}

// DecodeFirstFrame decodes only the first frame of data and returns the
// canvas pixels, bottom row first, with the canvas dimensions.
//
// A file without frames returns nil pixels and no error.
func DecodeFirstFrame(data []byte, conf *config.Config) ([]byte, int, int, error) {
	conf, err := prepare(data, conf)
	if err != nil {
		return nil, 0, 0, err
	}

	dmux, err := conf.Demux(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %w", ErrFeatureProbeFailed, err)
	}
	defer release(conf.Logger, dmux)

	width, height, err := canvasSize(dmux)
	if err != nil {
		return nil, 0, 0, err
	}

	var iter webp.WebPIterator
	if !dmux.GetFrame(1, &iter) {
		return nil, width, height, nil
	}

	f, err := decodeFragment(conf.Decoder, &iter)
	if err != nil {
		return nil, 0, 0, err
	}
	c, err := canvas.New(width, height)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %w", ErrFeatureProbeFailed, err)
	}
	if err := c.Overwrite(f); err != nil {
		return nil, 0, 0, err
	}

	return c.Snapshot(), c.Width, c.Height, nil
}

func prepare(data []byte, conf *config.Config) (*config.Config, error) {
	if !container.IsWebP(data) {
		return nil, ErrNotContainerFormat
	}
	if conf == nil {
		return config.New(), nil
	}
	if err := conf.Init(); err != nil {
		return nil, err
	}
	return conf, nil
}

func release(logger *slog.Logger, dmux config.Demuxer) {
	if err := dmux.Close(); err != nil {
		logger.Warn("closing demuxer", "error", err)
	}
}

// canvasSize returns the declared canvas dimensions. Nothing is allocated.
func canvasSize(dmux config.Demuxer) (int, int, error) {
	width := int(dmux.GetI(webp.WEBP_FF_CANVAS_WIDTH))
	height := int(dmux.GetI(webp.WEBP_FF_CANVAS_HEIGHT))

	if err := canvas.CheckDimensions(width, height); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrFeatureProbeFailed, err)
	}
	return width, height, nil
}

// decodeFragment decodes the frame under iter. The decoded size wins over the
// size the container declared.
func decodeFragment(decoder config.FragmentDecoder, iter *webp.WebPIterator) (*canvas.Fragment, error) {
	pix, width, height, err := decoder.DecodeFragment(iter.Fragment, iter.Width, iter.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrFragmentDecodeFailed, iter.FrameNum, err)
	}

	return &canvas.Fragment{
		OffsetX:  iter.XOffset,
		OffsetY:  iter.YOffset,
		Width:    width,
		Height:   height,
		Duration: iter.Duration,
		Blend:    iter.BlendMethod,
		Dispose:  iter.DisposeMethod,
		Pix:      pix,
		HasAlpha: iter.HasAlpha,
	}, nil
}

func compositeFragment(decoder config.FragmentDecoder, c *canvas.Canvas, iter *webp.WebPIterator) (canvas.Frame, error) {
	f, err := decodeFragment(decoder, iter)
	if err != nil {
		return canvas.Frame{}, err
	}
	return c.Composite(f)
}

func logSkipped(logger *slog.Logger, iter *webp.WebPIterator, err error) {
	level := slog.LevelWarn
	if errors.Is(err, canvas.ErrDimensionMismatch) {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, "skipping frame",
		"frame", iter.FrameNum,
		"width", iter.Width,
		"height", iter.Height,
		"error", err)
}

// background converts the BGRA word of the ANIM chunk.
func background(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
}
