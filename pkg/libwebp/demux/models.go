// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.

package demux

import (
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"golang.org/x/image/riff"
)

// Position of a chunk in the input, header and padding included.
type chunkData struct {
	offset int
	size   int
}

func (c chunkData) end() int {
	return c.offset + c.size
}

type frame struct {
	xOffset, yOffset int
	width, height    int
	hasAlpha         bool
	duration         int
	disposeMethod    webp.WebPMuxAnimDispose
	blendMethod      webp.WebPMuxAnimBlend
	frameNum         int
	complete         bool         // imgComponents contains a full image
	imgComponents    [2]chunkData // 0=VP8{,L} 1=ALPH
}

func (f *frame) alphaSeen() bool { return f.imgComponents[1].size > 0 }
func (f *frame) imageSeen() bool { return f.imgComponents[0].size > 0 }

// Non-image chunk such as ICCP, EXIF or XMP.
type chunk struct {
	id   riff.FourCC
	data chunkData
}

// Demuxer gives access to the frames and metadata chunks of a WebP file.
// It keeps a reference to the input until Close is called.
type Demuxer struct {
	data []byte

	canvasWidth, canvasHeight int
	featureFlags              webp.WebPFeatureFlags
	loopCount                 int
	bgcolor                   uint32

	frames []*frame
	chunks []chunk
	closed bool
}
