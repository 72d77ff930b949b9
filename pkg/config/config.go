package config

import (
	"errors"
	"log/slog"

	"github.com/daanv2/go-webpanim/pkg/assert"
	"github.com/daanv2/go-webpanim/pkg/libwebp/dec"
	"github.com/daanv2/go-webpanim/pkg/libwebp/demux"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
)

var (
	ErrNilConfig     = errors.New("config is nil")
	ErrNegativeLimit = errors.New("max_frames must be non-negative")
)

// FragmentDecoder turns the bytes of one frame into RGBA8 pixels. The returned
// width and height are the decoded ones.
type FragmentDecoder interface {
	DecodeFragment(fragment []byte, width, height int) (rgba []byte, w, h int, err error)
}

// Demuxer walks the frames of a parsed container.
type Demuxer interface {
	GetI(feature webp.WebPFormatFeature) uint32
	GetFrame(frameNum int, iter *webp.WebPIterator) bool
	NextFrame(iter *webp.WebPIterator) bool
	Close() error
}

// DemuxFunc parses data into a Demuxer.
type DemuxFunc func(data []byte) (Demuxer, error)

// Decoding parameters.
type Config struct {
	Logger *slog.Logger // Receives skipped-frame diagnostics. Defaults to slog.Default().
	Demux  DemuxFunc    // Defaults to the libwebp demuxer.
	// Decodes single frames. The default decoder emits rows bottom-up so that
	// they line up with the animation canvas. A replacement must do the same.
	Decoder FragmentDecoder
	// Stop after this many frames were pulled from the demuxer. 0 = all frames.
	MaxFrames int
}

// New returns a Config with every field set to its default.
func New() *Config {
	config := &Config{}
	err := config.Init()
	assert.Assert(err == nil, "default config must be valid")
	return config
}

// Init fills the unset fields with their defaults and validates the result.
func (config *Config) Init() error {
	if config == nil {
		return ErrNilConfig
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Demux == nil {
		config.Demux = NewDemuxer
	}
	if config.Decoder == nil {
		config.Decoder = dec.NewDecoder(webp.WebPDecoderOptions{Flip: true})
	}

	return config.Validate()
}

// Returns nil if 'config' is non-nil and all parameters are usable.
func (config *Config) Validate() error {
	if config == nil {
		return ErrNilConfig
	}
	if config.Logger == nil {
		return errors.New("logger is nil")
	}
	if config.Demux == nil {
		return errors.New("demux is nil")
	}
	if config.Decoder == nil {
		return errors.New("decoder is nil")
	}
	if config.MaxFrames < 0 {
		return ErrNegativeLimit
	}

	return nil
}

// NewDemuxer is the default DemuxFunc.
func NewDemuxer(data []byte) (Demuxer, error) {
	dmux, err := demux.New(data)
	if err != nil {
		return nil, err
	}
	return dmux, nil
}
