// Copyright 2010 Google Inc. All Rights Reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the COPYING file in the root of the source
// tree. An additional intellectual property rights grant can be found
// in the file PATENTS. All contributing project authors may
// be found in the AUTHORS file in the root of the source tree.
// -----------------------------------------------------------------------------
//
// Bitstream feature retrieval.

package dec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/daanv2/go-webpanim/pkg/container"
	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"golang.org/x/image/riff"
	"golang.org/x/image/vp8"
	"golang.org/x/image/vp8l"
)

var ErrUnsupportedFragment = errors.New("dec: unsupported fragment")

// chunks returns a reader over the chunks of data, which is either a whole
// RIFF/WEBP file or the bare chunk sequence of a frame.
func chunks(data []byte) (*riff.Reader, error) {
	var (
		formType riff.FourCC
		r        *riff.Reader
		err      error
	)
	if container.IsWebP(data) {
		formType, r, err = riff.NewReader(bytes.NewReader(data))
	} else {
		body := io.MultiReader(bytes.NewReader(webp.FOURCC_WEBP[:]), bytes.NewReader(data))
		formType, r, err = riff.NewListReader(uint32(webp.TAG_SIZE+len(data)), body)
	}
	if err != nil {
		return nil, err
	}
	if formType != webp.FOURCC_WEBP {
		return nil, fmt.Errorf("%w: form type %q", ErrUnsupportedFragment, formType[:])
	}
	return r, nil
}

// GetFeatures retrieves the dimensions, alpha and format of data, which is
// either a whole WebP file or a frame fragment (ALPH chunk followed by a VP8
// chunk, or a VP8L chunk). Only the headers are parsed.
//
// For an animated file the canvas dimensions are reported.
func GetFeatures(data []byte) (webp.WebPBitstreamFeatures, error) {
	var features webp.WebPBitstreamFeatures

	r, err := chunks(data)
	if err != nil {
		return features, err
	}

	for {
		id, size, chunk, err := r.Next()
		if err == io.EOF {
			return features, fmt.Errorf("%w: no image chunk", ErrUnsupportedFragment)
		}
		if err != nil {
			return features, err
		}

		switch id {
		case webp.FOURCC_VP8X:
			var buf [webp.VP8X_CHUNK_SIZE]byte
			if size < webp.VP8X_CHUNK_SIZE {
				return features, fmt.Errorf("%w: short VP8X chunk", ErrUnsupportedFragment)
			}
			if _, err := io.ReadFull(chunk, buf[:]); err != nil {
				return features, err
			}
			flags := webp.WebPFeatureFlags(buf[0])
			features.HasAlpha = flags.Has(webp.ALPHA_FLAG)
			features.HasAnimation = flags.Has(webp.ANIMATION_FLAG)
			features.Width = 1 + endian.GetLE24(buf[4:])
			features.Height = 1 + endian.GetLE24(buf[7:])
			if features.HasAnimation {
				return features, nil
			}

		case webp.FOURCC_ALPH:
			features.HasAlpha = true

		case webp.FOURCC_VP8:
			if size < webp.VP8_FRAME_HEADER_SIZE {
				return features, fmt.Errorf("%w: short VP8 chunk", ErrUnsupportedFragment)
			}
			d := vp8.NewDecoder()
			d.Init(chunk, int(size))
			fh, err := d.DecodeFrameHeader()
			if err != nil {
				return features, err
			}
			features.Format = webp.WEBP_FORMAT_LOSSY
			if features.Width == 0 {
				features.Width, features.Height = fh.Width, fh.Height
			}
			return features, nil

		case webp.FOURCC_VP8L:
			var hdr [webp.VP8L_FRAME_HEADER_SIZE]byte
			if size < webp.VP8L_FRAME_HEADER_SIZE {
				return features, fmt.Errorf("%w: short VP8L chunk", ErrUnsupportedFragment)
			}
			if _, err := io.ReadFull(chunk, hdr[:]); err != nil {
				return features, err
			}
			if hdr[0] != webp.VP8L_MAGIC_BYTE {
				return features, fmt.Errorf("%w: bad VP8L signature %#x", ErrUnsupportedFragment, hdr[0])
			}
			cfg, err := vp8l.DecodeConfig(bytes.NewReader(hdr[:]))
			if err != nil {
				return features, err
			}
			// The alpha hint follows the two 14-bit dimensions.
			features.HasAlpha = features.HasAlpha || (hdr[webp.VP8L_SIGNATURE_SIZE+3]>>4)&1 == 1
			features.Format = webp.WEBP_FORMAT_LOSSLESS
			if features.Width == 0 {
				features.Width, features.Height = cfg.Width, cfg.Height
			}
			return features, nil
		}
	}
}

// GetInfo returns the dimensions of data, or false when its headers cannot
// be read.
func GetInfo(data []byte) (width, height int, ok bool) {
	features, err := GetFeatures(data)
	if err != nil {
		return 0, 0, false
	}
	return features.Width, features.Height, true
}
