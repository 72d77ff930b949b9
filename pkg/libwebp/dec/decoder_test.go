package dec_test

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/daanv2/go-webpanim/pkg/libwebp/dec"
	"github.com/daanv2/go-webpanim/pkg/libwebp/webp"
	"github.com/daanv2/go-webpanim/pkg/webptest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// lossyAlphaFragment strips the RIFF header and the VP8X chunk, leaving the
// ALPH and VP8 chunks the way a demuxer hands them out.
func lossyAlphaFragment() []byte {
	return webptest.LossyAlpha[webp.RIFF_HEADER_SIZE+webp.CHUNK_HEADER_SIZE+webp.VP8X_CHUNK_SIZE:]
}

func TestDecodeFragmentLossless(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 25}
	d := dec.NewDecoder(webp.WebPDecoderOptions{})

	pix, w, h, err := d.DecodeFragment(webptest.VP8L(3, 5, c), 3, 5)
	require.NoError(t, err)
	require.Equal(t, 3, w)
	require.Equal(t, 5, h)
	if diff := cmp.Diff(bytes.Repeat([]byte{200, 100, 50, 25}, 15), pix); diff != "" {
		t.Errorf("unexpected pixels:\n--- want:\n+++ got:\n%s", diff)
	}
}

func TestDecodeFragmentReportsBitstreamSize(t *testing.T) {
	var d dec.Decoder

	_, w, h, err := d.DecodeFragment(webptest.VP8L(2, 2, color.NRGBA{A: 0xff}), 8, 8)
	require.NoError(t, err)
	require.Equal(t, 2, w)
	require.Equal(t, 2, h)
}

func TestDecodeFragmentLossyAlpha(t *testing.T) {
	var d dec.Decoder

	whole, w, h, err := dec.DecodeRGBA(webptest.LossyAlpha)
	require.NoError(t, err)
	require.Equal(t, 16, w)
	require.Equal(t, 16, h)
	require.Len(t, whole, 16*16*4)

	frag, w, h, err := d.DecodeFragment(lossyAlphaFragment(), 16, 16)
	require.NoError(t, err)
	require.Equal(t, 16, w)
	require.Equal(t, 16, h)
	require.Equal(t, whole, frag)
}

func TestDecodeFragmentFlip(t *testing.T) {
	straight, _, _, err := dec.NewDecoder(webp.WebPDecoderOptions{}).DecodeFragment(lossyAlphaFragment(), 16, 16)
	require.NoError(t, err)
	flipped, _, _, err := dec.NewDecoder(webp.WebPDecoderOptions{Flip: true}).DecodeFragment(lossyAlphaFragment(), 16, 16)
	require.NoError(t, err)

	stride := 16 * 4
	for y := 0; y < 16; y++ {
		require.Equal(t, straight[y*stride:(y+1)*stride], flipped[(15-y)*stride:(16-y)*stride], "row %d", y)
	}
}

func TestDecodeFragmentErrors(t *testing.T) {
	var d dec.Decoder

	_, _, _, err := d.DecodeFragment(webptest.Chunk("ICCP", []byte{1, 2}), 1, 1)
	require.ErrorIs(t, err, dec.ErrUnsupportedFragment)

	broken := webptest.Chunk("VP8L", []byte{0x2f, 0, 0, 0, 0})
	_, _, _, err = d.DecodeFragment(broken, 1, 1)
	require.Error(t, err)

	_, _, _, err = d.DecodeFragment([]byte{1, 2, 3}, 1, 1)
	require.Error(t, err)
}

func TestGetFeaturesShortHeaders(t *testing.T) {
	for name, data := range map[string][]byte{
		"short VP8":  webptest.Chunk("VP8 ", []byte{1, 2, 3, 4}),
		"short VP8L": webptest.Chunk("VP8L", []byte{0x2f, 0, 0}),
		"bad magic":  webptest.Chunk("VP8L", []byte{0x2e, 0, 0, 0, 0}),
	} {
		_, err := dec.GetFeatures(data)
		require.ErrorIs(t, err, dec.ErrUnsupportedFragment, name)

		_, _, ok := dec.GetInfo(data)
		require.False(t, ok, name)
	}
}

func TestGetFeatures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want webp.WebPBitstreamFeatures
	}{
		{
			name: "lossless opaque",
			data: webptest.VP8L(7, 9, color.NRGBA{A: 0xff}),
			want: webp.WebPBitstreamFeatures{Width: 7, Height: 9, Format: webp.WEBP_FORMAT_LOSSLESS},
		},
		{
			name: "lossless alpha",
			data: webptest.VP8L(1, 2, color.NRGBA{A: 0x10}),
			want: webp.WebPBitstreamFeatures{Width: 1, Height: 2, HasAlpha: true, Format: webp.WEBP_FORMAT_LOSSLESS},
		},
		{
			name: "simple file",
			data: webptest.Still(4, 3, color.NRGBA{A: 0xff}),
			want: webp.WebPBitstreamFeatures{Width: 4, Height: 3, Format: webp.WEBP_FORMAT_LOSSLESS},
		},
		{
			name: "lossy alpha file",
			data: webptest.LossyAlpha,
			want: webp.WebPBitstreamFeatures{Width: 16, Height: 16, HasAlpha: true, Format: webp.WEBP_FORMAT_LOSSY},
		},
		{
			name: "lossy alpha fragment",
			data: lossyAlphaFragment(),
			want: webp.WebPBitstreamFeatures{Width: 16, Height: 16, HasAlpha: true, Format: webp.WEBP_FORMAT_LOSSY},
		},
		{
			name: "animation",
			data: webptest.Animation(10, 6, 0, webptest.Frame{Width: 2, Height: 2}),
			want: webp.WebPBitstreamFeatures{Width: 10, Height: 6, HasAlpha: true, HasAnimation: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dec.GetFeatures(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			w, h, ok := dec.GetInfo(tt.data)
			require.True(t, ok)
			require.Equal(t, tt.want.Width, w)
			require.Equal(t, tt.want.Height, h)
		})
	}

	_, _, ok := dec.GetInfo(nil)
	require.False(t, ok)
}
