package piclut

import "github.com/yzigangirova/piclut-go/mem"

// Blend mixes the original and transformed images per channel:
// original*(1-strength) + transformed*strength, rounded and clamped.
// strength 0 returns a copy of orig, strength 1 a copy of xformed, exactly.
func Blend(mm mem.Manager, orig, xformed *Image, strength float64) *Image {
	switch strength {
	case 0.0:
		return orig.Clone()
	case 1.0:
		return xformed.Clone()
	}

	out := NewImage(mm, orig.Width, orig.Height)
	s := float32(strength)
	inv := 1.0 - s
	for i := range out.Pix {
		out.Pix[i] = clampU8f(float32(orig.Pix[i])*inv + float32(xformed.Pix[i])*s)
	}
	return out
}
