package piclut

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yzigangirova/piclut-go/mem"
)

func TestBlend_Endpoints(t *testing.T) {
	mm := mem.NewManager()
	orig := randomImage(mm, 13, 7, 3)
	xformed := randomImage(mm, 13, 7, 4)

	if diff := cmp.Diff(orig.Pix, Blend(mm, orig, xformed, 0.0).Pix); diff != "" {
		t.Errorf("strength 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(xformed.Pix, Blend(mm, orig, xformed, 1.0).Pix); diff != "" {
		t.Errorf("strength 1 (-want +got):\n%s", diff)
	}
}

func TestBlend_Midpoint(t *testing.T) {
	mm := mem.NewManager()
	orig := NewImage(mm, 1, 1)
	xformed := NewImage(mm, 1, 1)
	orig.Set(0, 0, 0, 100, 255)
	xformed.Set(0, 0, 255, 101, 0)

	out := Blend(mm, orig, xformed, 0.5)
	r, g, b := out.At(0, 0)
	// 127.5 rounds to 128, 100.5 to 101 (round half away from zero).
	if r != 128 || g != 101 || b != 128 {
		t.Errorf("Blend 0.5 = (%d,%d,%d); want (128,101,128)", r, g, b)
	}
}

func TestBlend_DoesNotAlias(t *testing.T) {
	mm := mem.NewManager()
	orig := randomImage(mm, 4, 4, 5)
	xformed := randomImage(mm, 4, 4, 6)

	out := Blend(mm, orig, xformed, 1.0)
	out.Pix[0] ^= 0xFF
	if out.Pix[0] == xformed.Pix[0] {
		t.Error("strength-1 result aliases the transformed image")
	}
}
