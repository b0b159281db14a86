package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodec struct {
	calls int
	out   []byte
	err   error
}

func (f *fakeCodec) Normalize(raw []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return raw, nil
}

type fakeStore struct {
	name string
	data []byte
}

func (f *fakeStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	f.name = name
	f.data = data
	return "/photos/" + name, nil
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("stores normalized bytes under a generated jpg name", func(t *testing.T) {
		codec := &fakeCodec{out: []byte("jpeg-bytes")}
		store := &fakeStore{}
		p := NewProcessor(codec, store)

		ref, err := p.Process(ctx, base64.StdEncoding.EncodeToString([]byte("input")))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, "/photos/"))
		assert.True(t, strings.HasSuffix(ref, ".jpg"))
		assert.Equal(t, []byte("jpeg-bytes"), store.data)
		assert.Equal(t, 1, codec.calls)
	})

	t.Run("accepts data URL payloads", func(t *testing.T) {
		p := NewProcessor(&fakeCodec{}, &fakeStore{})
		payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("input"))
		_, err := p.Process(ctx, payload)
		assert.NoError(t, err)
	})

	t.Run("rejects oversized payloads before the codec runs", func(t *testing.T) {
		codec := &fakeCodec{}
		p := NewProcessor(codec, &fakeStore{})

		big := base64.StdEncoding.EncodeToString(make([]byte, MaxPayloadBytes+1))
		_, err := p.Process(ctx, big)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
		assert.Zero(t, codec.calls)
	})

	t.Run("invalid base64 fails as processing error", func(t *testing.T) {
		p := NewProcessor(&fakeCodec{}, &fakeStore{})
		_, err := p.Process(ctx, "%%%not-base64%%%")
		assert.ErrorIs(t, err, ErrProcessing)
	})

	t.Run("codec failure is fatal", func(t *testing.T) {
		p := NewProcessor(&fakeCodec{err: assert.AnError}, &fakeStore{})
		_, err := p.Process(ctx, base64.StdEncoding.EncodeToString([]byte("input")))
		assert.ErrorIs(t, err, ErrProcessing)
	})
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y += 10 {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestJPEGCodecNormalize(t *testing.T) {
	codec := JPEGCodec{}

	t.Run("scales oversized image so the longer side fits", func(t *testing.T) {
		out, err := codec.Normalize(encodePNG(t, 2000, 1500), 1920, 1080, 85)
		require.NoError(t, err)

		result, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 1920, result.Bounds().Dx())
		assert.Equal(t, 1440, result.Bounds().Dy())
	})

	t.Run("does not upscale small images", func(t *testing.T) {
		out, err := codec.Normalize(encodePNG(t, 640, 480), 1920, 1080, 85)
		require.NoError(t, err)

		result, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 640, result.Bounds().Dx())
		assert.Equal(t, 480, result.Bounds().Dy())
	})

	t.Run("rejects bytes that are not an image", func(t *testing.T) {
		_, err := codec.Normalize([]byte("not an image"), 1920, 1080, 85)
		assert.Error(t, err)
	})
}
