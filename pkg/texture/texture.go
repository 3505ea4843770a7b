// Package texture defines the renderer collaborator that owns GPU-side
// texture handles, and an in-memory implementation of it.
//
// Workers upload decoded tiles from their own goroutines, so every
// [Renderer] must be safe for concurrent use.
package texture

import (
	"fmt"
)

// Handle is an opaque reference to an uploaded texture. The zero Handle is
// never issued.
type Handle uint32

// Pixels is a tightly packed pixel buffer.
type Pixels struct {
	Data     []byte
	Width    int
	Height   int
	Channels int // 1 for title bitmaps, 4 for RGBA tiles
}

// Validate checks that Data holds exactly Width*Height*Channels bytes.
func (p Pixels) Validate() error {
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("texture: negative size %dx%d", p.Width, p.Height)
	}
	if p.Channels != 1 && p.Channels != 3 && p.Channels != 4 {
		return fmt.Errorf("texture: unsupported channel count %d", p.Channels)
	}
	if want := p.Width * p.Height * p.Channels; len(p.Data) != want {
		return fmt.Errorf("texture: %d bytes for %dx%dx%d, want %d", len(p.Data), p.Width, p.Height, p.Channels, want)
	}
	return nil
}

// Renderer allocates, fills and releases textures.
type Renderer interface {
	// Allocate reserves a new, empty texture.
	Allocate() (Handle, error)

	// Upload fills a previously allocated texture.
	Upload(h Handle, p Pixels) error

	// Release frees a texture. Releasing an unknown handle is a no-op.
	Release(h Handle)
}

// UploadNew allocates a texture and fills it with p, releasing the
// allocation again if the upload fails.
func UploadNew(r Renderer, p Pixels) (Handle, error) {
	h, err := r.Allocate()
	if err != nil {
		return 0, err
	}
	if err := r.Upload(h, p); err != nil {
		r.Release(h)
		return 0, err
	}
	return h, nil
}
