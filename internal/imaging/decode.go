// Package imaging implements the default ImageDecoder and the
// thumbnail writer the Indexer uses to materialize face crops on disk.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/jnovak/facecat/internal/recognizer"
	"golang.org/x/image/bmp"
)

// Decoder is the default ImageDecoder, supporting the formats the
// standard library and golang.org/x/image register: JPEG, PNG, GIF,
// BMP. HEIC/HEIF require a platform codec and are left to a caller
// that wires one in via the same interface.
type Decoder struct{}

// Decode reads path and returns a row-major RGB8 raster.
func (Decoder) Decode(path string) (recognizer.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return recognizer.Image{}, fmt.Errorf("imaging.Decode: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		if f2, rerr := os.Open(path); rerr == nil {
			defer f2.Close()
			if bimg, berr := bmp.Decode(f2); berr == nil {
				img = bimg
				err = nil
			}
		}
		if err != nil {
			return recognizer.Image{}, fmt.Errorf("imaging.Decode: %w", err)
		}
	}

	return toRGB8(img), nil
}

func toRGB8(img image.Image) recognizer.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]byte, w*h*3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(b >> 8)
			i += 3
		}
	}
	return recognizer.Image{Width: w, Height: h, Channels: 3, Bytes: out}
}
