package piclut

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yzigangirova/piclut-go/mem"
)

// fclamp clamps a sampling coordinate to [0,1]. NaN maps to 0.
func fclamp(v float32) float32 {
	if v < 1.0e-9 || math.IsNaN(float64(v)) {
		return 0.0
	} else if v > 1.0 {
		return 1.0
	}
	return v
}

func lerp(a, l, h float32) float32 {
	return l + (h-l)*a
}

// Sample maps one RGB triplet through the lattice via trilinear
// interpolation. Inputs are normalized coordinates; they are clamped to
// [0,1] before lookup. The output is not clamped, so out-of-range lattice
// entries propagate to the caller.
func (lut *LutTable) Sample(r, g, b float32) (float32, float32, float32) {
	n := lut.Size
	domain := float32(n - 1)

	px := fclamp(r) * domain
	py := fclamp(g) * domain
	pz := fclamp(b) * domain

	x0 := int(px)
	y0 := int(py)
	z0 := int(pz)
	// A coordinate of exactly 1.0 interpolates at the last cell's far edge.
	if x0 > n-2 {
		x0 = n - 2
	}
	if y0 > n-2 {
		y0 = n - 2
	}
	if z0 > n-2 {
		z0 = n - 2
	}
	fx := px - float32(x0)
	fy := py - float32(y0)
	fz := pz - float32(z0)

	// Red varies fastest in the flat table, blue slowest.
	const stride = 3
	strideX := stride
	strideY := n * stride
	strideZ := n * n * stride

	base := x0*strideX + y0*strideY + z0*strideZ
	t := lut.Entries

	var out [3]float32
	for c := 0; c < 3; c++ {
		d000 := t[base+c]
		d100 := t[base+strideX+c]
		d010 := t[base+strideY+c]
		d110 := t[base+strideX+strideY+c]
		d001 := t[base+strideZ+c]
		d101 := t[base+strideX+strideZ+c]
		d011 := t[base+strideY+strideZ+c]
		d111 := t[base+strideX+strideY+strideZ+c]

		dx00 := lerp(fx, d000, d100)
		dx01 := lerp(fx, d001, d101)
		dx10 := lerp(fx, d010, d110)
		dx11 := lerp(fx, d011, d111)

		dxy0 := lerp(fy, dx00, dx10)
		dxy1 := lerp(fy, dx01, dx11)

		out[c] = lerp(fz, dxy0, dxy1)
	}
	return out[0], out[1], out[2]
}

// Map applies the lattice to every pixel of src, producing a new image of
// identical dimensions. Pixels are independent, so rows are processed in
// parallel bands; workers <= 0 uses GOMAXPROCS.
func (lut *LutTable) Map(mm mem.Manager, src *Image, workers int) *Image {
	dst := NewImage(mm, src.Width, src.Height)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > src.Height {
		workers = src.Height
	}
	if workers <= 1 {
		lut.mapRows(src, dst, 0, src.Height)
		return dst
	}

	var g errgroup.Group
	band := (src.Height + workers - 1) / workers
	for y := 0; y < src.Height; y += band {
		y0, y1 := y, y+band
		if y1 > src.Height {
			y1 = src.Height
		}
		g.Go(func() error {
			lut.mapRows(src, dst, y0, y1)
			return nil
		})
	}
	g.Wait() // workers never return errors
	return dst
}

func (lut *LutTable) mapRows(src, dst *Image, y0, y1 int) {
	const inv = 1.0 / 255.0
	for y := y0; y < y1; y++ {
		i := y * src.Width * 3
		for x := 0; x < src.Width; x++ {
			r := float32(src.Pix[i+0]) * inv
			g := float32(src.Pix[i+1]) * inv
			b := float32(src.Pix[i+2]) * inv

			or, og, ob := lut.Sample(r, g, b)

			dst.Pix[i+0] = clampU8f(or * 255.0)
			dst.Pix[i+1] = clampU8f(og * 255.0)
			dst.Pix[i+2] = clampU8f(ob * 255.0)
			i += 3
		}
	}
}
