package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/lite3d-exporter/internal/host"
)

// Pixels converts the host's bottom-up float RGBA pixels to a top-down image.
func Pixels(im *host.Image) (image.Image, error) {
	if !im.HasPixels() {
		return nil, fmt.Errorf("%w: %s", ErrNoPixels, im.Name)
	}

	img := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for i := 0; i < im.Width*im.Height; i++ {
		p := im.Pixels[i*4 : i*4+4]
		img.SetNRGBA(i%im.Width, i/im.Width, color.NRGBA{
			R: channel(p[0]),
			G: channel(p[1]),
			B: channel(p[2]),
			A: channel(p[3]),
		})
	}
	return transform.FlipV(img), nil
}

func channel(f float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, f)) * 255))
}

// Encode writes the image's pixels to dest, choosing the encoder by extension.
func Encode(im *host.Image, dest string) error {
	img, err := Pixels(im)
	if err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := encode(f, img, filepath.Ext(dest)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(w, img)
	}
}
