// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.
// -----------------------------------------------------------------------------
//
//  WebP container demux.
//

package demux

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/daanv2/go-webpanim/pkg/container"
	"github.com/daanv2/go-webpanim/pkg/libwebp/dec"
	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"golang.org/x/image/riff"
)

var (
	ErrParse  = errors.New("demux: invalid WebP container")
	ErrClosed = errors.New("demux: demuxer already closed")
)

// parser tracks the read position of the riff readers over the input so that
// frames can be handed out as slices of it.
type parser struct {
	dmux *Demuxer
	r    *bytes.Reader
}

func (p *parser) pos() int {
	return int(p.r.Size()) - p.r.Len()
}

// span returns the chunk whose header was just consumed by riff.Reader.Next.
func (p *parser) span(size uint32) chunkData {
	start := p.pos() - webp.CHUNK_HEADER_SIZE
	end := min(p.pos()+int(size)+int(size&1), len(p.dmux.data))
	return chunkData{offset: start, size: end - start}
}

func parseError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

// New parses a complete WebP file, simple or extended, still or animated.
// The returned Demuxer references data, which must not be modified until
// Close.
func New(data []byte) (*Demuxer, error) {
	if !container.IsWebP(data) {
		return nil, parseError("missing RIFF/WEBP header")
	}

	dmux := &Demuxer{
		data:      data,
		loopCount: 1,
		bgcolor:   0xffffffff,
	}
	p := &parser{dmux: dmux, r: bytes.NewReader(data)}

	_, rr, err := riff.NewReader(p.r)
	if err != nil {
		return nil, parseError("%v", err)
	}

	id, size, payload, err := rr.Next()
	if err != nil {
		return nil, parseError("reading first chunk: %v", err)
	}

	switch id {
	case webp.FOURCC_VP8, webp.FOURCC_VP8L:
		err = p.parseSingleImage(id, size)
		if err == nil {
			err = dmux.isValidSimpleFormat()
		}
	case webp.FOURCC_VP8X:
		err = p.parseVP8X(rr, payload, size)
		if err == nil {
			err = dmux.isValidExtendedFormat()
		}
	default:
		err = parseError("unexpected first chunk %q", id[:])
	}
	if err != nil {
		return nil, err
	}

	return dmux, nil
}

// storeComponent records an ALPH, VP8 or VP8L chunk in f. It reports false
// when the chunk does not belong to f.
func (p *parser) storeComponent(f *frame, id riff.FourCC, c chunkData) (bool, error) {
	switch id {
	case webp.FOURCC_ALPH:
		if f.alphaSeen() || f.imageSeen() {
			return false, nil
		}
		f.imgComponents[1] = c
		f.hasAlpha = true
		return true, nil

	case webp.FOURCC_VP8L, webp.FOURCC_VP8:
		if f.imageSeen() {
			return false, nil
		}
		if id == webp.FOURCC_VP8L && f.alphaSeen() {
			// VP8L has its own alpha channel.
			return false, parseError("frame %d: ALPH chunk before VP8L", f.frameNum)
		}
		features, err := dec.GetFeatures(p.dmux.data[c.offset:c.end()])
		if err != nil {
			return false, parseError("frame %d: %v", f.frameNum, err)
		}
		f.imgComponents[0] = c
		f.width = features.Width
		f.height = features.Height
		f.hasAlpha = f.hasAlpha || features.HasAlpha
		f.complete = true
		return true, nil
	}
	return false, nil
}

func (p *parser) parseSingleImage(id riff.FourCC, size uint32) error {
	dmux := p.dmux
	f := &frame{frameNum: 1}

	if _, err := p.storeComponent(f, id, p.span(size)); err != nil {
		return err
	}

	// Use the frame width/height as the canvas values for non-vp8x files.
	// Also, set ALPHA_FLAG if this is a lossless image with alpha.
	dmux.canvasWidth = f.width
	dmux.canvasHeight = f.height
	if f.hasAlpha {
		dmux.featureFlags |= webp.ALPHA_FLAG
	}
	dmux.frames = append(dmux.frames, f)

	return nil
}

func (p *parser) parseVP8X(rr *riff.Reader, payload io.Reader, size uint32) error {
	dmux := p.dmux

	if size < webp.VP8X_CHUNK_SIZE {
		return parseError("VP8X chunk too small (%d)", size)
	}
	var buf [webp.VP8X_CHUNK_SIZE]byte
	if _, err := io.ReadFull(payload, buf[:]); err != nil {
		return parseError("reading VP8X: %v", err)
	}

	dmux.featureFlags = webp.WebPFeatureFlags(buf[0])
	dmux.canvasWidth = 1 + endian.GetLE24(buf[4:])
	dmux.canvasHeight = 1 + endian.GetLE24(buf[7:])
	if uint64(dmux.canvasWidth)*uint64(dmux.canvasHeight) >= webp.MAX_IMAGE_AREA {
		return parseError("canvas %dx%d too large", dmux.canvasWidth, dmux.canvasHeight)
	}

	return p.parseVP8XChunks(rr)
}

func (p *parser) parseVP8XChunks(rr *riff.Reader) error {
	dmux := p.dmux
	isAnimation := dmux.featureFlags.Has(webp.ANIMATION_FLAG)
	animChunks := 0
	var still *frame

	for {
		id, size, payload, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return parseError("%v", err)
		}
		c := p.span(size)

		switch id {
		case webp.FOURCC_VP8X:
			return parseError("duplicate VP8X chunk")

		case webp.FOURCC_ALPH, webp.FOURCC_VP8, webp.FOURCC_VP8L:
			// check that this isn't an animation (all frames should be in an ANMF).
			if animChunks > 0 || isAnimation {
				return parseError("image chunk outside ANMF in an animation")
			}
			if still == nil {
				still = &frame{frameNum: 1}
				dmux.frames = append(dmux.frames, still)
			}
			stored, err := p.storeComponent(still, id, c)
			if err != nil {
				return err
			}
			if !stored {
				return parseError("unexpected %q chunk after the image", id[:])
			}

		case webp.FOURCC_ANIM:
			if size < webp.ANIM_CHUNK_SIZE {
				return parseError("ANIM chunk too small (%d)", size)
			}
			animChunks++
			if animChunks > 1 {
				continue
			}
			var buf [webp.ANIM_CHUNK_SIZE]byte
			if _, err := io.ReadFull(payload, buf[:]); err != nil {
				return parseError("reading ANIM: %v", err)
			}
			dmux.bgcolor = endian.GetLE32(buf[:])
			dmux.loopCount = endian.GetLE16(buf[4:])

		case webp.FOURCC_ANMF:
			if animChunks == 0 {
				return parseError("ANMF chunk before ANIM") // 'ANIM' precedes frames.
			}
			if err := p.parseAnimationFrame(payload, size, isAnimation); err != nil {
				return err
			}

		default:
			dmux.chunks = append(dmux.chunks, chunk{id: id, data: c})
		}
	}

	if still != nil && !dmux.featureFlags.Has(webp.ALPHA_FLAG) && still.alphaSeen() {
		// Clear any alpha when the alpha flag is missing.
		still.imgComponents[1] = chunkData{}
		still.hasAlpha = false
	}

	return nil
}

func (p *parser) parseAnimationFrame(payload io.Reader, size uint32, isAnimation bool) error {
	dmux := p.dmux

	if size < webp.ANMF_CHUNK_SIZE {
		return parseError("ANMF chunk too small (%d)", size)
	}
	var buf [webp.ANMF_CHUNK_SIZE]byte
	if _, err := io.ReadFull(payload, buf[:]); err != nil {
		return parseError("reading ANMF: %v", err)
	}

	f := &frame{
		frameNum: len(dmux.frames) + 1,
		xOffset:  2 * endian.GetLE24(buf[0:]),
		yOffset:  2 * endian.GetLE24(buf[3:]),
		width:    1 + endian.GetLE24(buf[6:]),
		height:   1 + endian.GetLE24(buf[9:]),
		duration: endian.GetLE24(buf[12:]),
	}
	bits := buf[15]
	f.disposeMethod = webp.WEBP_MUX_DISPOSE_NONE
	if bits&1 != 0 {
		f.disposeMethod = webp.WEBP_MUX_DISPOSE_BACKGROUND
	}
	f.blendMethod = webp.WEBP_MUX_BLEND
	if bits&2 != 0 {
		f.blendMethod = webp.WEBP_MUX_NO_BLEND
	}
	if uint64(f.width)*uint64(f.height) >= webp.MAX_IMAGE_AREA {
		return parseError("frame %d: %dx%d too large", f.frameNum, f.width, f.height)
	}

	// The frame data is a chunk list of its own. Replay the last header word
	// as the list type so riff can walk it.
	body := io.MultiReader(bytes.NewReader(buf[12:]), payload)
	_, sub, err := riff.NewListReader(size-(webp.ANMF_CHUNK_SIZE-webp.TAG_SIZE), body)
	if err != nil {
		return parseError("frame %d: %v", f.frameNum, err)
	}

	for {
		id, size, _, err := sub.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return parseError("frame %d: %v", f.frameNum, err)
		}
		stored, err := p.storeComponent(f, id, p.span(size))
		if err != nil {
			return err
		}
		if !stored && f.imageSeen() {
			break
		}
	}

	// Store a frame only if the animation flag is set.
	if isAnimation {
		dmux.frames = append(dmux.frames, f)
	}
	return nil
}

func (dmux *Demuxer) isValidSimpleFormat() error {
	f := dmux.frames[0]
	if !f.complete || dmux.canvasWidth <= 0 || dmux.canvasHeight <= 0 {
		return parseError("incomplete image")
	}
	return nil
}

func checkFrameBounds(f *frame, exact bool, canvasWidth, canvasHeight int) bool {
	if exact {
		if f.xOffset != 0 || f.yOffset != 0 {
			return false
		}
		if f.width != canvasWidth || f.height != canvasHeight {
			return false
		}
	} else {
		if f.xOffset < 0 || f.yOffset < 0 {
			return false
		}
		if f.width+f.xOffset > canvasWidth {
			return false
		}
		if f.height+f.yOffset > canvasHeight {
			return false
		}
	}
	return true
}

// An animation without frames is accepted; a still image needs its frame.
func (dmux *Demuxer) isValidExtendedFormat() error {
	isAnimation := dmux.featureFlags.Has(webp.ANIMATION_FLAG)

	if dmux.canvasWidth <= 0 || dmux.canvasHeight <= 0 {
		return parseError("invalid canvas size")
	}
	if dmux.featureFlags&^webp.ALL_VALID_FLAGS != 0 {
		return parseError("invalid VP8X flags %#x", int(dmux.featureFlags))
	}
	if !isAnimation && len(dmux.frames) == 0 {
		return parseError("no image")
	}

	for _, f := range dmux.frames {
		if !isAnimation && f.frameNum > 1 {
			return parseError("more than one frame in a still image")
		}
		if !f.complete {
			return parseError("frame %d has no image data", f.frameNum)
		}
		if f.width <= 0 || f.height <= 0 {
			return parseError("frame %d has no size", f.frameNum)
		}
		if !checkFrameBounds(f, !isAnimation, dmux.canvasWidth, dmux.canvasHeight) {
			return parseError("frame %d (%dx%d at %d,%d) outside the %dx%d canvas",
				f.frameNum, f.width, f.height, f.xOffset, f.yOffset, dmux.canvasWidth, dmux.canvasHeight)
		}
	}
	return nil
}
