package webpanim_test

import (
	"errors"
	"testing"

	"github.com/daanv2/go-webpanim"
	"github.com/daanv2/go-webpanim/pkg/config"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"github.com/daanv2/go-webpanim/pkg/webptest"
	"github.com/stretchr/testify/require"
)

// fakeDemuxer serves frames of solid colour fragments and counts Close calls.
type fakeDemuxer struct {
	width, height uint32
	frames        []webp.WebPIterator
	pulled        int
	closed        int
}

func (d *fakeDemuxer) GetI(feature webp.WebPFormatFeature) uint32 {
	switch feature {
	case webp.WEBP_FF_CANVAS_WIDTH:
		return d.width
	case webp.WEBP_FF_CANVAS_HEIGHT:
		return d.height
	case webp.WEBP_FF_FRAME_COUNT:
		return uint32(len(d.frames))
	}
	return 0
}

func (d *fakeDemuxer) GetFrame(frameNum int, iter *webp.WebPIterator) bool {
	if frameNum < 1 || frameNum > len(d.frames) {
		return false
	}
	d.pulled++
	*iter = d.frames[frameNum-1]
	return true
}

func (d *fakeDemuxer) NextFrame(iter *webp.WebPIterator) bool {
	return d.GetFrame(iter.FrameNum+1, iter)
}

func (d *fakeDemuxer) Close() error {
	d.closed++
	return nil
}

func (d *fakeDemuxer) open([]byte) (config.Demuxer, error) {
	return d, nil
}

// greyDecoder fills each fragment with the grey level of its first byte.
type greyDecoder struct{}

func (greyDecoder) DecodeFragment(fragment []byte, width, height int) ([]byte, int, int, error) {
	if len(fragment) == 0 {
		return nil, 0, 0, errors.New("empty fragment")
	}
	v := fragment[0]
	pix := make([]byte, 0, width*height*4)
	for i := 0; i < width*height; i++ {
		pix = append(pix, v, v, v, 0xff)
	}
	return pix, width, height, nil
}

func fakeFrames(n int) []webp.WebPIterator {
	frames := make([]webp.WebPIterator, n)
	for i := range frames {
		frames[i] = webp.WebPIterator{
			FrameNum:    i + 1,
			NumFrames:   n,
			Width:       2,
			Height:      2,
			Duration:    10,
			BlendMethod: webp.WEBP_MUX_NO_BLEND,
			Complete:    true,
			Fragment:    []byte{byte(i + 1)},
		}
	}
	return frames
}

func fakeConfig(d *fakeDemuxer) *config.Config {
	conf := discard()
	conf.Demux = d.open
	conf.Decoder = greyDecoder{}
	return conf
}

func TestDemuxerReleased(t *testing.T) {
	data := webptest.Animation(2, 2, 0)

	for _, test := range []struct {
		name   string
		dmux   *fakeDemuxer
		first  bool
		err    error
		frames int
	}{
		{name: "frames", dmux: &fakeDemuxer{width: 2, height: 2, frames: fakeFrames(3)}, frames: 3},
		{name: "no frames", dmux: &fakeDemuxer{width: 2, height: 2}},
		{name: "probe failure", dmux: &fakeDemuxer{height: 2, frames: fakeFrames(1)}, err: webpanim.ErrFeatureProbeFailed},
		{name: "first frame", dmux: &fakeDemuxer{width: 2, height: 2, frames: fakeFrames(3)}, first: true, frames: 1},
		{name: "first frame no frames", dmux: &fakeDemuxer{width: 2, height: 2}, first: true},
		{name: "first frame probe failure", dmux: &fakeDemuxer{width: 2}, first: true, err: webpanim.ErrFeatureProbeFailed},
		{name: "first frame decode failure", dmux: &fakeDemuxer{width: 2, height: 2, frames: []webp.WebPIterator{{FrameNum: 1, Width: 2, Height: 2}}}, first: true, err: webpanim.ErrFragmentDecodeFailed},
	} {
		t.Run(test.name, func(t *testing.T) {
			conf := fakeConfig(test.dmux)

			var err error
			frames := 0
			if test.first {
				var pix []byte
				pix, _, _, err = webpanim.DecodeFirstFrame(data, conf)
				if pix != nil {
					frames = 1
				}
			} else {
				var anim *webpanim.Animation
				anim, err = webpanim.DecodeAnimation(data, conf)
				if anim != nil {
					frames = len(anim.Frames)
				}
			}

			require.ErrorIs(t, err, test.err)
			require.Equal(t, test.frames, frames)
			require.Equal(t, 1, test.dmux.closed)
		})
	}
}

func TestDemuxerCreationFailure(t *testing.T) {
	conf := discard()
	conf.Demux = func([]byte) (config.Demuxer, error) {
		return nil, errors.New("bad container")
	}

	_, err := webpanim.DecodeAnimation(webptest.Animation(2, 2, 0), conf)
	require.ErrorIs(t, err, webpanim.ErrFeatureProbeFailed)
}

func TestMaxFramesStopsPulling(t *testing.T) {
	dmux := &fakeDemuxer{width: 2, height: 2, frames: fakeFrames(10)}
	conf := fakeConfig(dmux)
	conf.MaxFrames = 3

	anim, err := webpanim.DecodeAnimation(webptest.Animation(2, 2, 0), conf)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 3)
	require.Equal(t, 3, dmux.pulled)
	require.Equal(t, 1, dmux.closed)

	require.Equal(t, []byte{3, 3, 3, 0xff}, anim.Frames[2].Pix[:4])
	require.Equal(t, 30, anim.Frames[2].Timestamp)
}
