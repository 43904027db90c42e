package piclut

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yzigangirova/piclut-go/mem"
)

func TestFromImage_StripsAlpha(t *testing.T) {
	mm := mem.NewManager()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	img := FromImage(mm, src)
	if r, g, b := img.At(0, 0); r != 10 || g != 20 || b != 30 {
		t.Errorf("pixel 0 = (%d,%d,%d); want (10,20,30)", r, g, b)
	}
	if r, g, b := img.At(1, 0); r != 200 || g != 100 || b != 50 {
		t.Errorf("pixel 1 = (%d,%d,%d); want (200,100,50)", r, g, b)
	}
}

func TestFromImage_NonZeroOrigin(t *testing.T) {
	mm := mem.NewManager()
	src := image.NewRGBA(image.Rect(2, 3, 5, 6))
	src.SetRGBA(2, 3, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	img := FromImage(mm, src)
	if img.Width != 3 || img.Height != 3 {
		t.Fatalf("dimensions %dx%d; want 3x3", img.Width, img.Height)
	}
	if r, g, b := img.At(0, 0); r != 9 || g != 8 || b != 7 {
		t.Errorf("origin pixel = (%d,%d,%d); want (9,8,7)", r, g, b)
	}
}

func TestFromImage_GenericPath(t *testing.T) {
	mm := mem.NewManager()
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 99})

	img := FromImage(mm, src)
	if r, g, b := img.At(1, 1); r != 99 || g != 99 || b != 99 {
		t.Errorf("gray pixel = (%d,%d,%d); want (99,99,99)", r, g, b)
	}
}

func TestToNRGBA_Roundtrip(t *testing.T) {
	mm := mem.NewManager()
	orig := randomImage(mm, 9, 4, 40)

	back := FromImage(mm, orig.ToNRGBA())
	if diff := cmp.Diff(orig.Pix, back.Pix); diff != "" {
		t.Errorf("roundtrip (-want +got):\n%s", diff)
	}
}

func TestClone_Independent(t *testing.T) {
	mm := mem.NewManager()
	a := randomImage(mm, 3, 3, 41)
	b := a.Clone()
	b.Pix[0] ^= 0xFF
	if a.Pix[0] == b.Pix[0] {
		t.Error("Clone shares the pixel buffer")
	}
}

func TestClampU8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-5, 0},
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{127.5, 128},
		{254.5, 255},
		{255, 255},
		{300, 255},
	}
	for _, test := range tests {
		if got := clampU8(test.in); got != test.want {
			t.Errorf("clampU8(%g) = %d; want %d", test.in, got, test.want)
		}
		if got := clampU8f(float32(test.in)); got != test.want {
			t.Errorf("clampU8f(%g) = %d; want %d", test.in, got, test.want)
		}
	}
}
