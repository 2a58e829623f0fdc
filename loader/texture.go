package loader

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"terrain-renderer/resources"
)

// TextureOptions adjusts decoded images before upload.
type TextureOptions struct {
	// FlipVertical puts the last image row first.
	FlipVertical bool
	// MaxSize bounds the longer side; larger images are scaled down
	// preserving aspect. Zero means no limit.
	MaxSize int
}

// LoadTexture reads a PNG, JPEG, BMP, TIFF or WebP file as RGBA8.
func LoadTexture(path string, opts TextureOptions) (resources.TextureData, error) {
	f, err := os.Open(path)
	if err != nil {
		return resources.TextureData{}, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	data, err := DecodeTexture(f, opts)
	if err != nil {
		return resources.TextureData{}, fmt.Errorf("texture %q: %w", path, err)
	}
	return data, nil
}

func DecodeTexture(r io.Reader, opts TextureOptions) (resources.TextureData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return resources.TextureData{}, fmt.Errorf("decode: %w", err)
	}
	return TextureFromImage(img, opts), nil
}

// TextureFromImage converts img to tightly packed RGBA8 rows.
func TextureFromImage(img image.Image, opts TextureOptions) resources.TextureData {
	b := img.Bounds()
	if w, h := b.Dx(), b.Dy(); opts.MaxSize > 0 && (w > opts.MaxSize || h > opts.MaxSize) {
		if w >= h {
			h = max(1, h*opts.MaxSize/w)
			w = opts.MaxSize
		} else {
			w = max(1, w*opts.MaxSize/h)
			h = opts.MaxSize
		}
		img = transform.Resize(img, w, h, transform.Linear)
	}
	if opts.FlipVertical {
		img = transform.FlipV(img)
	}

	rgba := clone.AsRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	pixels := rgba.Pix
	if rgba.Stride != w*4 || len(pixels) != w*h*4 {
		pixels = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride:]
			pixels = append(pixels, row[:w*4]...)
		}
	}
	return resources.TextureData{Width: w, Height: h, Pixels: pixels}
}

// LoadHeightmap reads an image for terrain.HeightsFromImage.
func LoadHeightmap(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %q: %w", path, err)
	}
	return img, nil
}
