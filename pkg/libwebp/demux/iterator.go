// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.

package demux

import (
	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"golang.org/x/image/riff"
)

// GetI returns the value of feature, or 0 once the demuxer is closed.
func (dmux *Demuxer) GetI(feature webp.WebPFormatFeature) uint32 {
	if dmux == nil || dmux.closed {
		return 0
	}

	switch feature {
	case webp.WEBP_FF_FORMAT_FLAGS:
		return uint32(dmux.featureFlags)
	case webp.WEBP_FF_CANVAS_WIDTH:
		return uint32(dmux.canvasWidth)
	case webp.WEBP_FF_CANVAS_HEIGHT:
		return uint32(dmux.canvasHeight)
	case webp.WEBP_FF_LOOP_COUNT:
		return uint32(dmux.loopCount)
	case webp.WEBP_FF_BACKGROUND_COLOR:
		return dmux.bgcolor
	case webp.WEBP_FF_FRAME_COUNT:
		return uint32(len(dmux.frames))
	}
	return 0
}

func (dmux *Demuxer) getFramePayload(f *frame) []byte {
	if !f.complete {
		return nil
	}
	image := f.imgComponents[0]
	start := image.offset
	if alpha := f.imgComponents[1]; alpha.size > 0 {
		start = alpha.offset
	}
	return dmux.data[start:image.end()]
}

func (dmux *Demuxer) synthesizeFrame(f *frame, iter *webp.WebPIterator) bool {
	payload := dmux.getFramePayload(f)
	if payload == nil {
		return false
	}

	*iter = webp.WebPIterator{
		FrameNum:      f.frameNum,
		NumFrames:     len(dmux.frames),
		XOffset:       f.xOffset,
		YOffset:       f.yOffset,
		Width:         f.width,
		Height:        f.height,
		HasAlpha:      f.hasAlpha,
		Duration:      f.duration,
		DisposeMethod: f.disposeMethod,
		BlendMethod:   f.blendMethod,
		Complete:      f.complete,
		Fragment:      payload,
	}
	return true
}

func (dmux *Demuxer) setFrame(frameNum int, iter *webp.WebPIterator) bool {
	if dmux == nil || dmux.closed || iter == nil || frameNum < 0 {
		return false
	}
	if frameNum > len(dmux.frames) {
		return false
	}
	if frameNum == 0 {
		frameNum = len(dmux.frames)
	}
	if frameNum == 0 {
		return false
	}

	return dmux.synthesizeFrame(dmux.frames[frameNum-1], iter)
}

// GetFrame fills iter with frame frameNum. Frames are numbered from 1; 0
// selects the last frame. It reports false when there is no such frame, in
// which case iter is left untouched.
func (dmux *Demuxer) GetFrame(frameNum int, iter *webp.WebPIterator) bool {
	return dmux.setFrame(frameNum, iter)
}

// NextFrame advances iter to the following frame.
func (dmux *Demuxer) NextFrame(iter *webp.WebPIterator) bool {
	if iter == nil {
		return false
	}
	return dmux.setFrame(iter.FrameNum+1, iter)
}

// PrevFrame moves iter to the preceding frame.
func (dmux *Demuxer) PrevFrame(iter *webp.WebPIterator) bool {
	if iter == nil || iter.FrameNum <= 1 {
		return false
	}
	return dmux.setFrame(iter.FrameNum-1, iter)
}

// ChunkCount returns the number of metadata chunks tagged fourcc.
func (dmux *Demuxer) ChunkCount(fourcc riff.FourCC) int {
	if dmux == nil || dmux.closed {
		return 0
	}
	count := 0
	for _, c := range dmux.chunks {
		if c.id == fourcc {
			count++
		}
	}
	return count
}

// GetChunk returns the payload of the chunkNum-th (1-based, 0 = last) metadata
// chunk tagged fourcc.
func (dmux *Demuxer) GetChunk(fourcc riff.FourCC, chunkNum int) ([]byte, bool) {
	count := dmux.ChunkCount(fourcc)
	if chunkNum < 0 || chunkNum > count || count == 0 {
		return nil, false
	}
	if chunkNum == 0 {
		chunkNum = count
	}

	seen := 0
	for _, c := range dmux.chunks {
		if c.id != fourcc {
			continue
		}
		seen++
		if seen == chunkNum {
			size := int(endian.GetLE32(dmux.data[c.data.offset+webp.TAG_SIZE:]))
			start := c.data.offset + webp.CHUNK_HEADER_SIZE
			return dmux.data[start:min(start+size, c.data.end())], true
		}
	}
	return nil, false
}

// Close releases the input. Every later call reports no data.
func (dmux *Demuxer) Close() error {
	if dmux == nil {
		return nil
	}
	if dmux.closed {
		return ErrClosed
	}
	dmux.closed = true
	dmux.data = nil
	dmux.frames = nil
	dmux.chunks = nil
	return nil
}
