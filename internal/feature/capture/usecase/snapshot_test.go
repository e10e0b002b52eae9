package usecase

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanzi_backend/internal/feature/recognition/domain/entity"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSnapshotter_Snapshot(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		width        int
		height       int
		expectWidth  int
		expectHeight int
	}{
		{name: "landscape is scaled down", width: 2560, height: 1440, expectWidth: 1280, expectHeight: 720},
		{name: "portrait is scaled down", width: 1000, height: 2000, expectWidth: 640, expectHeight: 1280},
		{name: "small image keeps size", width: 320, height: 240, expectWidth: 320, expectHeight: 240},
		{name: "exact limit keeps size", width: 1280, height: 50, expectWidth: 1280, expectHeight: 50},
	}

	s := NewSnapshotter(0, 0)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Snapshot(encodePNG(t, tc.width, tc.height))
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", got.MIMEType)

			decoded, err := jpeg.Decode(bytes.NewReader(got.Data))
			require.NoError(t, err)
			assert.Equal(t, tc.expectWidth, decoded.Bounds().Dx())
			assert.Equal(t, tc.expectHeight, decoded.Bounds().Dy())
		})
	}
}

func TestSnapshotter_Errors(t *testing.T) {
	t.Parallel()

	s := NewSnapshotter(0, 0)

	_, err := s.Snapshot(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = s.Snapshot(make([]byte, MaxImageSize+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = s.Snapshot([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestSnapshotter_FromDataURL(t *testing.T) {
	t.Parallel()

	s := NewSnapshotter(100, 80)
	src := entity.Image{MIMEType: "image/png", Data: encodePNG(t, 400, 200)}

	got, err := s.FromDataURL(src.DataURL())
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(got.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())

	_, err = s.FromDataURL("not a data url")
	assert.ErrorIs(t, err, entity.ErrInvalidDataURL)
}

func TestFit(t *testing.T) {
	t.Parallel()

	w, h := fit(5000, 1, 1280)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 1, h)
}
