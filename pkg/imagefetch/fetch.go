// Package imagefetch downloads tile artwork, decodes it, scales it to the
// tile size, and uploads it to a [texture.Renderer].
//
// PNG, JPEG, GIF, WebP and BMP are recognized. Failures are classified as
// NETWORK_ERROR (the bytes never arrived) or DECODE_ERROR (they arrived but
// were not an image). Fetches are never retried; a failed tile is simply
// absent from its row.
package imagefetch

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/remote"
	"github.com/matzehuels/tilerow/pkg/texture"
)

// Default tile size in pixels.
const (
	DefaultWidth  = 500
	DefaultHeight = 281
)

// Fetcher turns an image URL into an uploaded texture. It is safe for
// concurrent use when its Renderer is.
type Fetcher struct {
	client   *remote.Client
	renderer texture.Renderer
	width    int
	height   int
}

// New creates a Fetcher that scales every image to width×height. Non-positive
// sizes fall back to the defaults.
func New(client *remote.Client, renderer texture.Renderer, width, height int) *Fetcher {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Fetcher{client: client, renderer: renderer, width: width, height: height}
}

// Fetch downloads url and uploads the decoded image. The texture is
// allocated before decoding and released again if decoding or upload fails,
// so a failed fetch never leaks a handle.
func (f *Fetcher) Fetch(ctx context.Context, url string) (texture.Handle, error) {
	if url == "" {
		return 0, errors.New(errors.ErrCodeNetwork, "empty image URL")
	}
	data, err := f.client.GetBytes(ctx, url)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
	}

	h, err := f.renderer.Allocate()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "allocate texture")
	}

	px, err := f.decode(data)
	if err != nil {
		f.renderer.Release(h)
		return 0, errors.Wrap(errors.ErrCodeDecode, err, "decode %s", url)
	}
	if err := f.renderer.Upload(h, px); err != nil {
		f.renderer.Release(h)
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "upload %s", url)
	}
	return h, nil
}

// decode parses data and scales it into a tightly packed RGBA buffer.
func (f *Fetcher) decode(data []byte) (texture.Pixels, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return texture.Pixels{}, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return texture.Pixels{Data: dst.Pix, Width: f.width, Height: f.height, Channels: 4}, nil
}
