package render

import (
	"image"

	"github.com/cespare/xxhash/v2"
)

// Picture is a width x height RGBA pixel buffer. Pixels never written stay
// transparent black.
type Picture struct {
	Width  int
	Height int

	img *image.NRGBA
}

func NewPicture(width, height int) *Picture {
	return &Picture{
		Width:  width,
		Height: height,
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// Set writes one pixel. Coordinates outside the buffer are ignored.
func (p *Picture) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}
	i := p.img.PixOffset(x, y)
	p.img.Pix[i+0] = c.Red
	p.img.Pix[i+1] = c.Green
	p.img.Pix[i+2] = c.Blue
	p.img.Pix[i+3] = c.Alpha
}

// Get reads one pixel; outside the buffer it returns transparent black.
func (p *Picture) Get(x, y int) Color {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return Color{}
	}
	i := p.img.PixOffset(x, y)
	return Color{
		Red:   p.img.Pix[i+0],
		Green: p.img.Pix[i+1],
		Blue:  p.img.Pix[i+2],
		Alpha: p.img.Pix[i+3],
	}
}

// Pix exposes the raw row-major RGBA bytes.
func (p *Picture) Pix() []byte {
	return p.img.Pix
}

// Image exposes the buffer as a standard image for encoding.
func (p *Picture) Image() image.Image {
	return p.img
}

// Digest hashes the pixel data. Two pictures with the same shape and pixels
// have the same digest.
func (p *Picture) Digest() uint64 {
	return xxhash.Sum64(p.img.Pix)
}
