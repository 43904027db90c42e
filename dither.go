package piclut

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/yzigangirova/piclut-go/mem"
)

// Mitigation selects the banding-mitigation strategy applied after the LUT
// transform.
type Mitigation int

const (
	// MitigationNone leaves the image untouched.
	MitigationNone Mitigation = iota
	// MitigationOrdered applies fixed-pattern Bayer dithering.
	MitigationOrdered
	// MitigationNoise applies independent Gaussian noise per channel.
	MitigationNoise
	// MitigationFloydSteinberg applies sequential error-diffusion dithering.
	MitigationFloydSteinberg
	// MitigationDeband applies the edge-preserving debanding filter.
	MitigationDeband

	mitigationCount // sentinel for validation
)

var mitigationNames = [mitigationCount]string{
	"none", "ordered", "noise", "floyd-steinberg", "deband",
}

// String returns the name of the mitigation strategy.
func (m Mitigation) String() string {
	if m >= 0 && m < mitigationCount {
		return mitigationNames[m]
	}
	return fmt.Sprintf("Mitigation(%d)", int(m))
}

// Valid reports whether m is a known strategy.
func (m Mitigation) Valid() bool {
	return m >= 0 && m < mitigationCount
}

// ParseMitigation maps a strategy name to its Mitigation value.
func ParseMitigation(s string) (Mitigation, error) {
	for i, name := range mitigationNames {
		if strings.EqualFold(s, name) {
			return Mitigation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown banding mitigation %q", s)
}

// ditherStep is the quantization strength shared by the ordered and
// error-diffusion strategies.
const ditherStep = 32.0

// bayer4 is the 4x4 ordered dither threshold table, normalized to
// [-0.5, 0.5]: (m/16 - 0.5) over the classic index matrix.
var bayer4 = [4][4]float32{
	{0.0/16 - 0.5, 8.0/16 - 0.5, 2.0/16 - 0.5, 10.0/16 - 0.5},
	{12.0/16 - 0.5, 4.0/16 - 0.5, 14.0/16 - 0.5, 6.0/16 - 0.5},
	{3.0/16 - 0.5, 11.0/16 - 0.5, 1.0/16 - 0.5, 9.0/16 - 0.5},
	{15.0/16 - 0.5, 7.0/16 - 0.5, 13.0/16 - 0.5, 5.0/16 - 0.5},
}

// OrderedDither perturbs each channel by a position-dependent Bayer
// threshold. Deterministic: identical input yields identical output.
func OrderedDither(mm mem.Manager, src *Image) *Image {
	dst := NewImage(mm, src.Width, src.Height)
	i := 0
	for y := 0; y < src.Height; y++ {
		row := &bayer4[y&3]
		for x := 0; x < src.Width; x++ {
			t := row[x&3] * ditherStep
			dst.Pix[i+0] = clampU8f(float32(src.Pix[i+0]) + t)
			dst.Pix[i+1] = clampU8f(float32(src.Pix[i+1]) + t)
			dst.Pix[i+2] = clampU8f(float32(src.Pix[i+2]) + t)
			i += 3
		}
	}
	return dst
}

// noiseStddev is the spread of the stochastic dither, in channel units.
const noiseStddev = 1.5

// NoiseDither perturbs every channel by an independent Gaussian sample.
// A non-zero seed makes the output reproducible.
func NoiseDither(mm mem.Manager, src *Image, seed int64) *Image {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	dst := NewImage(mm, src.Width, src.Height)
	for i, v := range src.Pix {
		dst.Pix[i] = clampU8f(float32(v) + float32(rng.NormFloat64())*noiseStddev)
	}
	return dst
}

// FloydSteinbergDither quantizes each channel to multiples of ditherStep and
// diffuses the rounding error to unvisited neighbors with the classic
// 7/16, 3/16, 5/16, 1/16 weights. Raster order is load-bearing: each pixel
// depends on errors from its predecessors, so this must not be parallelized
// within one image.
func FloydSteinbergDither(mm mem.Manager, src *Image) *Image {
	w, h := src.Width, src.Height
	dst := NewImage(mm, w, h)

	// Accumulated values, one float plane per channel row set.
	acc := mem.GetPlane(w * h * 3)
	defer mem.PutPlane(acc)
	for i, v := range src.Pix {
		acc[i] = float32(v)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			for c := 0; c < 3; c++ {
				old := acc[i+c]
				q := float32(math.Round(float64(old/ditherStep))) * ditherStep
				if q < 0 {
					q = 0
				} else if q > 255 {
					q = 255
				}
				dst.Pix[i+c] = uint8(q)
				err := old - q

				if x+1 < w {
					acc[i+3+c] += err * (7.0 / 16.0)
				}
				if y+1 < h {
					j := ((y+1)*w + x) * 3
					if x > 0 {
						acc[j-3+c] += err * (3.0 / 16.0)
					}
					acc[j+c] += err * (5.0 / 16.0)
					if x+1 < w {
						acc[j+3+c] += err * (1.0 / 16.0)
					}
				}
			}
		}
	}
	return dst
}
