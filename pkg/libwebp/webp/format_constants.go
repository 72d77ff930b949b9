// Copyright 2012 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.
// -----------------------------------------------------------------------------
//
//  Constants related to the WebP file format.
//
// Author: Urvang (urvang@google.com)

package webp

import "golang.org/x/image/riff"

// Chunk tags.
var (
	FOURCC_RIFF = riff.FourCC{'R', 'I', 'F', 'F'}
	FOURCC_WEBP = riff.FourCC{'W', 'E', 'B', 'P'}
	FOURCC_VP8X = riff.FourCC{'V', 'P', '8', 'X'}
	FOURCC_ANIM = riff.FourCC{'A', 'N', 'I', 'M'}
	FOURCC_ANMF = riff.FourCC{'A', 'N', 'M', 'F'}
	FOURCC_ALPH = riff.FourCC{'A', 'L', 'P', 'H'}
	FOURCC_VP8  = riff.FourCC{'V', 'P', '8', ' '}
	FOURCC_VP8L = riff.FourCC{'V', 'P', '8', 'L'}
	FOURCC_ICCP = riff.FourCC{'I', 'C', 'C', 'P'}
	FOURCC_EXIF = riff.FourCC{'E', 'X', 'I', 'F'}
	FOURCC_XMP  = riff.FourCC{'X', 'M', 'P', ' '}
)

// VP8 related constants.
const VP8_FRAME_HEADER_SIZE = 10 // Size of the frame header within VP8 data.

// VP8L related constants.
const VP8L_SIGNATURE_SIZE = 1    // VP8L signature size.
const VP8L_MAGIC_BYTE = 0x2f     // VP8L signature byte.
const VP8L_IMAGE_SIZE_BITS = 14  // Number of bits used to store width and height.
const VP8L_VERSION_BITS = 3      // 3 bits reserved for version.
const VP8L_VERSION = 0           // version 0
const VP8L_FRAME_HEADER_SIZE = 5 // Size of the VP8L frame header.

// Mux related constants.
const TAG_SIZE = 4          // Size of a chunk tag (e.g. "VP8L").
const CHUNK_SIZE_BYTES = 4  // Size needed to store chunk's size.
const RIFF_HEADER_SIZE = 12 // Size of the RIFF header ("RIFFnnnnWEBP").
const ANMF_CHUNK_SIZE = 16  // Size of an ANMF chunk.
const ANIM_CHUNK_SIZE = 6   // Size of an ANIM chunk.
const VP8X_CHUNK_SIZE = 10  // Size of a VP8X chunk.

// Size of a chunk header.
const CHUNK_HEADER_SIZE = TAG_SIZE + CHUNK_SIZE_BYTES

const MAX_CANVAS_SIZE = 1 << 24 // 24-bit max for VP8X width/height.
const MAX_IMAGE_AREA = 1 << 32  // 32-bit max for width x height.

// Maximum chunk payload is such that adding the header and padding won't
// overflow a uint32.
const MAX_CHUNK_PAYLOAD = ^uint32(0) - CHUNK_HEADER_SIZE - 1

// Number of bytes per RGBA8 pixel.
const NUM_CHANNELS = 4
