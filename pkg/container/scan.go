// Package container classifies a WebP asset from its RIFF chunk headers
// without decoding any pixels.
//
// Every function accepts arbitrary bytes. A buffer that ends early or declares
// chunk sizes running past its end is simply reported as "not found".
package container

import (
	"bytes"

	"github.com/daanv2/go-webpanim/pkg/libwebp/endian"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

// Flags is what Scan learns from the first relevant chunk.
type Flags struct {
	Animated bool
	Alpha    bool
}

// IsWebP reports whether data starts with the "RIFF" .... "WEBP" header.
func IsWebP(data []byte) bool {
	return len(data) > 11 &&
		bytes.Equal(data[0:4], webp.FOURCC_RIFF[:]) &&
		bytes.Equal(data[8:12], webp.FOURCC_WEBP[:])
}

// Scan walks the chunk headers after the 12 byte RIFF header until it meets a
// VP8X or ANIM chunk.
//
// VP8X always comes first in an extended file, so its flags byte answers both
// questions. An ANIM chunk met first only tells that the file is animated.
// Scan does not check the RIFF header itself; see IsWebP.
func Scan(data []byte) Flags {
	size := uint64(len(data))
	pos := uint64(webp.RIFF_HEADER_SIZE)

	for pos+webp.CHUNK_HEADER_SIZE <= size {
		tag := data[pos : pos+webp.TAG_SIZE]
		payload := uint64(endian.GetLE32(data[pos+webp.TAG_SIZE:]))
		pos += webp.CHUNK_HEADER_SIZE

		switch {
		case bytes.Equal(tag, webp.FOURCC_VP8X[:]):
			if pos+1 > size {
				return Flags{}
			}
			flags := webp.WebPFeatureFlags(data[pos])
			return Flags{
				Animated: flags.Has(webp.ANIMATION_FLAG),
				Alpha:    flags.Has(webp.ALPHA_FLAG),
			}
		case bytes.Equal(tag, webp.FOURCC_ANIM[:]):
			return Flags{Animated: true}
		}

		// Chunks are padded to an even size.
		pos += payload + payload&1
		if pos > size {
			return Flags{}
		}
	}

	return Flags{}
}

// IsAnimated reports whether data is an animated WebP, per Scan.
func IsAnimated(data []byte) bool {
	return Scan(data).Animated
}

// HasAlpha reports whether the VP8X chunk of data declares an alpha channel.
func HasAlpha(data []byte) bool {
	return Scan(data).Alpha
}
