package piclut

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yzigangirova/piclut-go/mem"
)

func TestBlueNoiseTexture(t *testing.T) {
	tex := blueNoiseTexture()
	if len(tex) != noiseTextureSize*noiseTextureSize {
		t.Fatalf("texture length %d", len(tex))
	}
	var lo, hi float32 = 1, -1
	for _, v := range tex {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo < -0.5 || hi > 0.5 {
		t.Errorf("texture range [%g, %g] outside [-0.5, 0.5]", lo, hi)
	}
	// Full normalization: both extremes are hit exactly.
	if lo != -0.5 || hi != 0.5 {
		t.Errorf("texture range [%g, %g]; want [-0.5, 0.5]", lo, hi)
	}
}

func TestBlueNoiseDither_Deterministic(t *testing.T) {
	mm := mem.NewManager()
	src := randomImage(mm, 300, 40, 11) // wider than the texture, so it tiles

	a := BlueNoiseDither(mm, src, 2.0)
	b := BlueNoiseDither(mm, src, 2.0)
	if diff := cmp.Diff(a.Pix, b.Pix); diff != "" {
		t.Errorf("blue-noise dither not reproducible (-want +got):\n%s", diff)
	}
	if a.Width != src.Width || a.Height != src.Height {
		t.Errorf("dimensions changed: %dx%d", a.Width, a.Height)
	}
}

// gradientImage builds a horizontal ramp with a hard vertical edge in the
// middle, a good stand-in for banded sky against a building.
func gradientImage(mm mem.Manager, w, h int) *Image {
	img := NewImage(mm, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 200 / w)
			if x > w/2 {
				v += 55
			}
			img.Set(x, y, v, v, v)
		}
	}
	return img
}

func TestDeband_Basic(t *testing.T) {
	mm := mem.NewManager()
	src := gradientImage(mm, 64, 48)

	out := Deband(mm, src, DebandOptions{})
	if out.Width != src.Width || out.Height != src.Height {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}

	// Deterministic: the texture is fixed, there is no free-running RNG.
	again := Deband(mm, src, DebandOptions{})
	if diff := cmp.Diff(out.Pix, again.Pix); diff != "" {
		t.Errorf("deband not reproducible (-want +got):\n%s", diff)
	}
}

func TestDeband_PreservesStrongEdge(t *testing.T) {
	mm := mem.NewManager()
	w, h := 64, 16
	src := NewImage(mm, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(40)
			if x >= w/2 {
				v = 215
			}
			src.Set(x, y, v, v, v)
		}
	}

	out := Deband(mm, src, DebandOptions{})
	// The edge step must survive: the two sides stay far apart right at
	// the boundary.
	l, _, _ := out.At(w/2-1, h/2)
	r, _, _ := out.At(w/2, h/2)
	if int(r)-int(l) < 100 {
		t.Errorf("edge flattened: left %d, right %d", l, r)
	}
}

func TestDeband_FallbackPath(t *testing.T) {
	mm := mem.NewManager()
	src := gradientImage(mm, 32, 24)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	out := Deband(mm, src, DebandOptions{DisableEdgePreserving: true, Logger: log})
	if out.Width != src.Width || out.Height != src.Height {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}

	// The fallback injects no dither, so a constant image stays constant.
	flat := NewImage(mm, 16, 16)
	for i := range flat.Pix {
		flat.Pix[i] = 77
	}
	smoothed := Deband(mm, flat, DebandOptions{DisableEdgePreserving: true, Logger: log})
	for i, v := range smoothed.Pix {
		if v != 77 {
			t.Fatalf("flat image changed at %d: %d", i, v)
		}
	}
}

func TestSmoothingWeights_Bounds(t *testing.T) {
	mm := mem.NewManager()
	src := gradientImage(mm, 48, 32)

	w := smoothingWeights(src)
	defer mem.PutPlane(w)
	for i, v := range w {
		if v < 0 || v > 1 {
			t.Fatalf("weight[%d] = %g outside [0,1]", i, v)
		}
	}
}

func TestBilateralSmooth_FlattensNoise(t *testing.T) {
	mm := mem.NewManager()
	// Constant 128 plus small noise: bilateral smoothing must reduce the
	// spread substantially.
	src := NewImage(mm, 32, 32)
	noise := randomImage(mm, 32, 32, 12)
	for i := range src.Pix {
		src.Pix[i] = 124 + noise.Pix[i]%8
	}

	out := bilateralSmooth(mm, src)
	if spread(out.Pix) >= spread(src.Pix) {
		t.Errorf("bilateral did not reduce spread: %d -> %d", spread(src.Pix), spread(out.Pix))
	}
}

func spread(pix []uint8) int {
	lo, hi := 255, 0
	for _, v := range pix {
		if int(v) < lo {
			lo = int(v)
		}
		if int(v) > hi {
			hi = int(v)
		}
	}
	return hi - lo
}
