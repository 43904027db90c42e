package piclut

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/yzigangirova/piclut-go/mem"
)

// Blue-noise dither texture: a fixed, tileable field of values in
// [-0.5, 0.5] built once at first use. The texture is shared, read-only, and
// seeded deterministically, so debanding output is reproducible run-to-run.
const (
	noiseTextureSize = 256
	noiseTextureSeed = 42
)

var blueNoiseTexture = sync.OnceValue(generateBlueNoiseTexture)

// generateBlueNoiseTexture approximates blue noise by summing sin/cos
// products at several frequencies plus a small uniform jitter, then
// normalizing to [-0.5, 0.5].
func generateBlueNoiseTexture() []float32 {
	const n = noiseTextureSize
	rng := rand.New(rand.NewSource(noiseTextureSeed))

	raw := make([]float64, n*n)
	step := 4 * math.Pi / float64(n-1)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < n; y++ {
		yy := float64(y) * step
		for x := 0; x < n; x++ {
			xx := float64(x) * step
			v := math.Sin(xx)*math.Cos(yy)*0.3 +
				math.Sin(xx*0.7)*math.Cos(yy*0.9)*0.3 +
				math.Sin(xx*1.3)*math.Cos(yy*1.1)*0.2 +
				math.Sin(xx*2.1)*math.Cos(yy*1.7)*0.2
			v += (rng.Float64()*2 - 1) * 0.1
			raw[y*n+x] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	tex := make([]float32, n*n)
	for i, v := range raw {
		tex[i] = float32((v-lo)/(hi-lo) - 0.5)
	}
	return tex
}

// BlueNoiseDither perturbs every pixel by the tiled blue-noise texture,
// scaled by intensity. The same threshold is applied to all three channels
// of a pixel, which keeps the perturbation luminance-only.
func BlueNoiseDither(mm mem.Manager, src *Image, intensity float32) *Image {
	tex := blueNoiseTexture()
	dst := NewImage(mm, src.Width, src.Height)
	i := 0
	for y := 0; y < src.Height; y++ {
		trow := tex[(y&(noiseTextureSize-1))*noiseTextureSize:]
		for x := 0; x < src.Width; x++ {
			t := trow[x&(noiseTextureSize-1)] * intensity
			dst.Pix[i+0] = clampU8f(float32(src.Pix[i+0]) + t)
			dst.Pix[i+1] = clampU8f(float32(src.Pix[i+1]) + t)
			dst.Pix[i+2] = clampU8f(float32(src.Pix[i+2]) + t)
			i += 3
		}
	}
	return dst
}

// Smoothing parameters. The primary path is a domain-transform style
// recursive filter; the fallback is a plain bilateral filter.
const (
	dtSigmaSpatial = 30.0
	dtSigmaColor   = 30.0
	dtIterations   = 3

	bilateralDiameter   = 9
	bilateralSigmaColor = 35.0
	bilateralSigmaSpace = 35.0
)

// Gradient-guided blend parameters.
const (
	gradSteepness = 10.0
	gradThreshold = 0.25

	// Amplitude of the residual-band masking dither, in channel units.
	debandDitherAmp = 2.0
)

// DebandOptions controls the edge-preserving debanding filter.
type DebandOptions struct {
	// DisableEdgePreserving forces the degraded fallback path: a plain
	// bilateral smoothing of the whole image, with no gradient-guided
	// blend and no dither injection.
	DisableEdgePreserving bool

	// Logger receives the informational notice when the fallback path is
	// taken. Nil uses slog.Default().
	Logger *slog.Logger
}

// Deband suppresses color banding while preserving edges:
// an edge-aware smoothed copy is blended back into the original under a
// gradient-derived weight map, then a small blue-noise perturbation, scaled
// by the same map, masks residual bands in flat regions.
func Deband(mm mem.Manager, src *Image, opts DebandOptions) *Image {
	if opts.DisableEdgePreserving {
		log := opts.Logger
		if log == nil {
			log = slog.Default()
		}
		log.Info("deband: edge-preserving smoothing unavailable, using bilateral fallback")
		return bilateralSmooth(mm, src)
	}

	smoothed := domainTransformSmooth(mm, src)

	weight := smoothingWeights(src)
	defer mem.PutPlane(weight)

	tex := blueNoiseTexture()
	dst := NewImage(mm, src.Width, src.Height)
	i := 0
	for y := 0; y < src.Height; y++ {
		trow := tex[(y&(noiseTextureSize-1))*noiseTextureSize:]
		for x := 0; x < src.Width; x++ {
			w := weight[y*src.Width+x]
			noise := trow[x&(noiseTextureSize-1)] * debandDitherAmp * w
			for c := 0; c < 3; c++ {
				v := w*float32(smoothed.Pix[i+c]) + (1-w)*float32(src.Pix[i+c])
				dst.Pix[i+c] = clampU8f(v + noise)
			}
			i += 3
		}
	}
	return dst
}

// smoothingWeights builds the per-pixel blend weight map: Sobel gradient
// magnitude on grayscale, normalized to [0,1], passed through a logistic
// falloff (near 1 in flat regions, near 0 at edges), then box-blurred so
// the transition between regions stays soft.
func smoothingWeights(src *Image) []float32 {
	w, h := src.Width, src.Height

	gray := mem.GetPlane(w * h)
	defer mem.PutPlane(gray)
	for i := 0; i < w*h; i++ {
		p := i * 3
		gray[i] = 0.299*float32(src.Pix[p]) + 0.587*float32(src.Pix[p+1]) + 0.114*float32(src.Pix[p+2])
	}

	grad := mem.GetPlane(w * h)
	defer mem.PutPlane(grad)
	var maxGrad float32
	for y := 0; y < h; y++ {
		ym := max(y-1, 0)
		yp := min(y+1, h-1)
		for x := 0; x < w; x++ {
			xm := max(x-1, 0)
			xp := min(x+1, w-1)

			gx := gray[ym*w+xp] + 2*gray[y*w+xp] + gray[yp*w+xp] -
				gray[ym*w+xm] - 2*gray[y*w+xm] - gray[yp*w+xm]
			gy := gray[yp*w+xm] + 2*gray[yp*w+x] + gray[yp*w+xp] -
				gray[ym*w+xm] - 2*gray[ym*w+x] - gray[ym*w+xp]

			g := float32(math.Sqrt(float64(gx*gx + gy*gy)))
			grad[y*w+x] = g
			if g > maxGrad {
				maxGrad = g
			}
		}
	}
	if maxGrad == 0 {
		maxGrad = 1
	}

	weight := mem.GetPlane(w * h)
	for i, g := range grad {
		gn := g / maxGrad
		weight[i] = float32(1.0 / (1.0 + math.Exp(gradSteepness*float64(gn-gradThreshold))))
	}

	boxBlur3(weight, grad, w, h) // grad doubles as scratch here
	return weight
}

// boxBlur3 applies a 3x3 box blur to plane in place, using tmp as scratch.
func boxBlur3(plane, tmp []float32, w, h int) {
	// Horizontal pass into tmp.
	for y := 0; y < h; y++ {
		row := plane[y*w : (y+1)*w]
		out := tmp[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			sum := row[x]
			n := float32(1)
			if x > 0 {
				sum += row[x-1]
				n++
			}
			if x+1 < w {
				sum += row[x+1]
				n++
			}
			out[x] = sum / n
		}
	}
	// Vertical pass back into plane.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := tmp[y*w+x]
			n := float32(1)
			if y > 0 {
				sum += tmp[(y-1)*w+x]
				n++
			}
			if y+1 < h {
				sum += tmp[(y+1)*w+x]
				n++
			}
			plane[y*w+x] = sum / n
		}
	}
}

// domainTransformSmooth is an edge-preserving smoothing filter after
// Gastal & Oliveira's domain transform (recursive filtering variant):
// per-axis recursive passes whose feedback decays with the transformed
// domain distance, so flat regions are smoothed hard while strong color
// edges block propagation. Runs dtIterations alternating passes with a
// per-iteration spatial sigma schedule.
func domainTransformSmooth(mm mem.Manager, src *Image) *Image {
	w, h := src.Width, src.Height
	n := w * h

	planes := [3][]float32{}
	for c := 0; c < 3; c++ {
		planes[c] = mem.GetPlane(n)
		defer mem.PutPlane(planes[c])
		for i := 0; i < n; i++ {
			planes[c][i] = float32(src.Pix[i*3+c])
		}
	}

	// Domain transform derivatives: d = 1 + (sigmaS/sigmaR) * sum |dI|.
	dctx := mem.GetPlane(n) // horizontal
	dcty := mem.GetPlane(n) // vertical
	defer mem.PutPlane(dctx)
	defer mem.PutPlane(dcty)
	ratio := float32(dtSigmaSpatial / dtSigmaColor)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			var dx, dy float32
			if x > 0 {
				p, q := i*3, (i-1)*3
				dx = absDiffU8(src.Pix[p], src.Pix[q]) +
					absDiffU8(src.Pix[p+1], src.Pix[q+1]) +
					absDiffU8(src.Pix[p+2], src.Pix[q+2])
			}
			if y > 0 {
				p, q := i*3, (i-w)*3
				dy = absDiffU8(src.Pix[p], src.Pix[q]) +
					absDiffU8(src.Pix[p+1], src.Pix[q+1]) +
					absDiffU8(src.Pix[p+2], src.Pix[q+2])
			}
			dctx[i] = 1 + ratio*dx
			dcty[i] = 1 + ratio*dy
		}
	}

	for it := 0; it < dtIterations; it++ {
		// Sigma schedule from the paper, eq. 14.
		sigmaH := dtSigmaSpatial * math.Sqrt(3) *
			math.Pow(2, float64(dtIterations-(it+1))) /
			math.Sqrt(math.Pow(4, dtIterations)-1)
		a := float32(math.Exp(-math.Sqrt2 / sigmaH))

		for c := 0; c < 3; c++ {
			recursiveHorizontal(planes[c], dctx, w, h, a)
			recursiveVertical(planes[c], dcty, w, h, a)
		}
	}

	dst := NewImage(mm, w, h)
	for i := 0; i < n; i++ {
		dst.Pix[i*3+0] = clampU8f(planes[0][i])
		dst.Pix[i*3+1] = clampU8f(planes[1][i])
		dst.Pix[i*3+2] = clampU8f(planes[2][i])
	}
	return dst
}

func absDiffU8(a, b uint8) float32 {
	if a > b {
		return float32(a - b)
	}
	return float32(b - a)
}

// recursiveHorizontal runs the causal and anti-causal pass over each row.
// The feedback coefficient is a^d, with d the domain transform derivative.
func recursiveHorizontal(plane, dct []float32, w, h int, a float32) {
	for y := 0; y < h; y++ {
		row := plane[y*w : (y+1)*w]
		d := dct[y*w : (y+1)*w]
		for x := 1; x < w; x++ {
			p := float32(math.Pow(float64(a), float64(d[x])))
			row[x] += p * (row[x-1] - row[x])
		}
		for x := w - 2; x >= 0; x-- {
			p := float32(math.Pow(float64(a), float64(d[x+1])))
			row[x] += p * (row[x+1] - row[x])
		}
	}
}

// recursiveVertical is the column-wise counterpart of recursiveHorizontal.
func recursiveVertical(plane, dct []float32, w, h int, a float32) {
	for y := 1; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			p := float32(math.Pow(float64(a), float64(dct[i])))
			plane[i] += p * (plane[i-w] - plane[i])
		}
	}
	for y := h - 2; y >= 0; y-- {
		for x := 0; x < w; x++ {
			i := y*w + x
			p := float32(math.Pow(float64(a), float64(dct[i+w])))
			plane[i] += p * (plane[i+w] - plane[i])
		}
	}
}

// bilateralSmooth is the degraded fallback: a fixed-window bilateral filter
// over the whole image, spatial and color Gaussian kernels, no gradient
// guidance.
func bilateralSmooth(mm mem.Manager, src *Image) *Image {
	const radius = bilateralDiameter / 2
	w, h := src.Width, src.Height

	// Precomputed kernels: spatial by squared distance, color by absolute
	// channel-sum difference (0..765).
	var spatial [radius*2 + 1][radius*2 + 1]float32
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[dy+radius][dx+radius] =
				float32(math.Exp(-d2 / (2 * bilateralSigmaSpace * bilateralSigmaSpace)))
		}
	}
	var colorKernel [766]float32
	for d := 0; d < len(colorKernel); d++ {
		colorKernel[d] = float32(math.Exp(-float64(d*d) / (2 * bilateralSigmaColor * bilateralSigmaColor)))
	}

	dst := NewImage(mm, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			cr, cg, cb := src.Pix[i], src.Pix[i+1], src.Pix[i+2]

			var sumR, sumG, sumB, sumW float32
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					j := (ny*w + nx) * 3
					nr, ng, nb := src.Pix[j], src.Pix[j+1], src.Pix[j+2]
					cd := int(absDiffU8(cr, nr) + absDiffU8(cg, ng) + absDiffU8(cb, nb))
					wt := spatial[dy+radius][dx+radius] * colorKernel[cd]
					sumR += wt * float32(nr)
					sumG += wt * float32(ng)
					sumB += wt * float32(nb)
					sumW += wt
				}
			}
			dst.Pix[i+0] = clampU8f(sumR / sumW)
			dst.Pix[i+1] = clampU8f(sumG / sumW)
			dst.Pix[i+2] = clampU8f(sumB / sumW)
		}
	}
	return dst
}
