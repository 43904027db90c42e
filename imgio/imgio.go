// Package imgio is the image container collaborator for the transform
// pipeline: it decodes files into flat RGB buffers and encodes results back
// to disk. The pipeline itself never touches container formats.
package imgio

import (
	"fmt"
	"image"
	_ "image/gif" // decode only
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decode only

	piclut "github.com/yzigangirova/piclut-go"
	"github.com/yzigangirova/piclut-go/mem"
)

// jpegQuality is used for .jpg/.jpeg output.
const jpegQuality = 95

// Decoder reads image files into pipeline buffers, stripping any alpha
// channel. It implements piclut.Decoder.
type Decoder struct {
	Mem mem.Manager
}

// Decode reads and decodes the file at path.
func (d Decoder) Decode(path string) (*piclut.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return piclut.FromImage(d.Mem, img), nil
}

// Encode writes img to path; the container format follows the file
// extension (.png, .jpg/.jpeg, .tif/.tiff, .bmp).
func Encode(path string, img *piclut.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	std := img.ToNRGBA()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, std)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, std, &jpeg.Options{Quality: jpegQuality})
	case ".tif", ".tiff":
		err = tiff.Encode(f, std, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case ".bmp":
		err = bmp.Encode(f, std)
	default:
		err = fmt.Errorf("imgio: unsupported output extension %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}
