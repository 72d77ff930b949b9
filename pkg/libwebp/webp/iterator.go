// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.

package webp

// WebPIterator describes one frame of a demuxed file.
type WebPIterator struct {
	FrameNum         int
	NumFrames        int                // equivalent to WEBP_FF_FRAME_COUNT.
	XOffset, YOffset int                // offset relative to the canvas.
	Width, Height    int                // dimensions of this frame.
	Duration         int                // display duration in milliseconds.
	DisposeMethod    WebPMuxAnimDispose // dispose method for the frame.
	// true if 'Fragment' contains a full frame.
	Complete bool
	// The frame given by 'FrameNum': the ALPH chunk (if any) followed by the
	// VP8/VP8L chunk, headers included. Note for historical reasons this is
	// called a fragment. It aliases the demuxer's input.
	Fragment    []byte
	HasAlpha    bool             // True if the frame contains transparency.
	BlendMethod WebPMuxAnimBlend // Blend operation for the frame.
}
