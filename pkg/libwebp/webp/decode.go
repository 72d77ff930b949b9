package webp

// Features gathered from the bitstream.
type WebPBitstreamFeatures struct {
	Width        int        // Width in pixels, as read from the bitstream.
	Height       int        // Height in pixels, as read from the bitstream.
	HasAlpha     bool       // True if the bitstream contains an alpha channel.
	HasAnimation bool       // True if the bitstream is an animation.
	Format       WebPFormat // lossy, lossless or undefined (/mixed)
}

// Decoding options
type WebPDecoderOptions struct {
	Flip bool // if true, flip output vertically
}
