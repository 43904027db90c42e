package piclut

import (
	"image"
	"math"

	"github.com/yzigangirova/piclut-go/mem"
)

// Image is a flat 8-bit, 3-channel pixel buffer in RGB order, row-major.
// Pipeline stages never alias an Image they did not allocate; each stage
// produces a fresh buffer and hands ownership to the next.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // len == Width*Height*3
}

// NewImage allocates a zeroed image of the given dimensions.
func NewImage(mm mem.Manager, w, h int) *Image {
	return &Image{
		Width:  w,
		Height: h,
		Pix:    mem.MakeSlice[uint8](mm, w*h*3),
	}
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := &Image{Width: im.Width, Height: im.Height, Pix: make([]uint8, len(im.Pix))}
	copy(out.Pix, im.Pix)
	return out
}

// offset returns the index of the R channel of pixel (x, y).
func (im *Image) offset(x, y int) int {
	return (y*im.Width + x) * 3
}

// At returns the RGB triplet at (x, y).
func (im *Image) At(x, y int) (r, g, b uint8) {
	i := im.offset(x, y)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Set stores the RGB triplet at (x, y).
func (im *Image) Set(x, y int, r, g, b uint8) {
	i := im.offset(x, y)
	im.Pix[i] = r
	im.Pix[i+1] = g
	im.Pix[i+2] = b
}

// FromImage converts any image.Image into a flat RGB buffer, discarding any
// alpha channel. This is the boundary between the decode collaborator and
// the pipeline.
func FromImage(mm mem.Manager, src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewImage(mm, w, h)

	// Fast path for the common decoder output types.
	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			si := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * w * 3
			for x := 0; x < w; x++ {
				out.Pix[di+0] = s.Pix[si+0]
				out.Pix[di+1] = s.Pix[si+1]
				out.Pix[di+2] = s.Pix[si+2]
				si += 4
				di += 3
			}
		}
		return out
	case *image.RGBA:
		for y := 0; y < h; y++ {
			si := s.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * w * 3
			for x := 0; x < w; x++ {
				out.Pix[di+0] = s.Pix[si+0]
				out.Pix[di+1] = s.Pix[si+1]
				out.Pix[di+2] = s.Pix[si+2]
				si += 4
				di += 3
			}
		}
		return out
	}

	di := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[di+0] = uint8(r >> 8)
			out.Pix[di+1] = uint8(g >> 8)
			out.Pix[di+2] = uint8(b >> 8)
			di += 3
		}
	}
	return out
}

// ToNRGBA converts the buffer back to a standard library image for encoding.
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	si := 0
	for y := 0; y < im.Height; y++ {
		di := out.PixOffset(0, y)
		for x := 0; x < im.Width; x++ {
			out.Pix[di+0] = im.Pix[si+0]
			out.Pix[di+1] = im.Pix[si+1]
			out.Pix[di+2] = im.Pix[si+2]
			out.Pix[di+3] = 0xFF
			si += 3
			di += 4
		}
	}
	return out
}

// clampU8 rounds to nearest and clamps to the 8-bit channel range.
func clampU8(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// clampU8f is the float32 variant used on the hot per-pixel paths.
func clampU8f(v float32) uint8 {
	r := float32(math.Round(float64(v)))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
