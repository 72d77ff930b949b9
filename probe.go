package webpanim

import "github.com/daanv2/go-webpanim/pkg/container"

// IsWebP reports whether data starts with a RIFF/WEBP header.
func IsWebP(data []byte) bool {
	return container.IsWebP(data)
}

// IsAnimated reports whether the container declares an animation. Only the
// chunk headers are inspected.
func IsAnimated(data []byte) bool {
	return container.IsAnimated(data)
}

// HasAlpha reports whether the VP8X chunk declares an alpha channel.
func HasAlpha(data []byte) bool {
	return container.HasAlpha(data)
}
