package webp

// VP8X Feature Flags.
type WebPFeatureFlags int

const (
	ANIMATION_FLAG WebPFeatureFlags = 0x00000002
	XMP_FLAG       WebPFeatureFlags = 0x00000004
	EXIF_FLAG      WebPFeatureFlags = 0x00000008
	ALPHA_FLAG     WebPFeatureFlags = 0x00000010
	ICCP_FLAG      WebPFeatureFlags = 0x00000020

	ALL_VALID_FLAGS WebPFeatureFlags = 0x0000003e
)

// Has reports whether all bits of flag are set in f.
func (f WebPFeatureFlags) Has(flag WebPFeatureFlags) bool {
	return f&flag == flag
}

// Dispose method (animation only). Indicates how the area used by the current
// frame is to be treated before rendering the next frame on the canvas.
type WebPMuxAnimDispose int

const (
	WEBP_MUX_DISPOSE_NONE       WebPMuxAnimDispose = iota // Do not dispose.
	WEBP_MUX_DISPOSE_BACKGROUND                           // Dispose to background color.
)

func (d WebPMuxAnimDispose) String() string {
	switch d {
	case WEBP_MUX_DISPOSE_NONE:
		return "none"
	case WEBP_MUX_DISPOSE_BACKGROUND:
		return "background"
	}
	return "unknown"
}

// Blend operation (animation only). Indicates how transparent pixels of the
// current frame are blended with those of the previous canvas.
type WebPMuxAnimBlend int

const (
	WEBP_MUX_BLEND    WebPMuxAnimBlend = iota // Blend.
	WEBP_MUX_NO_BLEND                         // Do not blend.
)

func (b WebPMuxAnimBlend) String() string {
	switch b {
	case WEBP_MUX_BLEND:
		return "blend"
	case WEBP_MUX_NO_BLEND:
		return "no-blend"
	}
	return "unknown"
}

// Features a demuxer can report through GetI.
type WebPFormatFeature int

const (
	WEBP_FF_FORMAT_FLAGS     WebPFormatFeature = iota // bit-wise combination of WebPFeatureFlags
	WEBP_FF_CANVAS_WIDTH                              // width of the canvas
	WEBP_FF_CANVAS_HEIGHT                             // height of the canvas
	WEBP_FF_LOOP_COUNT                                // only relevant for animated file
	WEBP_FF_BACKGROUND_COLOR                          // idem.
	WEBP_FF_FRAME_COUNT                               // Number of frames present in the demux object.
)

// Bitstream compression format of a single image.
type WebPFormat int

const (
	WEBP_FORMAT_UNDEFINED WebPFormat = iota // undefined or mixed
	WEBP_FORMAT_LOSSY
	WEBP_FORMAT_LOSSLESS
)
