package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	extimaging "github.com/disintegration/imaging"

	"github.com/jnovak/facecat/internal/recognizer"
)

// DefaultThumbnailSize is the square pixel dimension used when the
// indexer configuration doesn't override it.
const DefaultThumbnailSize = 150

// ThumbnailPath returns the on-disk path for a face's thumbnail.
func ThumbnailPath(dir string, faceID int64) string {
	return filepath.Join(dir, fmt.Sprintf("face_%d.jpg", faceID))
}

// WriteThumbnail crops img to bbox expanded by 20% on each side
// (clipped to image bounds), scales it (aspect preserved) to
// size×size, and writes it as a JPEG to dir/face_{faceID}.jpg.
func WriteThumbnail(img recognizer.Image, bbox recognizer.BBox, dir string, faceID int64, size int) error {
	const op = "imaging.WriteThumbnail"

	if size <= 0 {
		size = DefaultThumbnailSize
	}

	src := fromRGB8(img)
	crop := expandAndClip(bbox, img.Width, img.Height)
	if crop.Dx() <= 0 || crop.Dy() <= 0 {
		return fmt.Errorf("%s: empty crop region", op)
	}

	cropped := extimaging.Crop(src, crop)
	thumb := extimaging.Fit(cropped, size, size, extimaging.Lanczos)
	square := extimaging.PasteCenter(extimaging.New(size, size, image.White), thumb)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	path := ThumbnailPath(dir, faceID)
	if err := extimaging.Save(square, path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func expandAndClip(b recognizer.BBox, imgW, imgH int) image.Rectangle {
	expandX := b.Width / 5 // 20%
	expandY := b.Height / 5

	x0 := clamp(b.X-expandX, 0, imgW)
	y0 := clamp(b.Y-expandY, 0, imgH)
	x1 := clamp(b.X+b.Width+expandX, 0, imgW)
	y1 := clamp(b.Y+b.Height+expandY, 0, imgH)

	return image.Rect(x0, y0, x1, y1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fromRGB8(img recognizer.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := (y*img.Width + x) * 3
			o := out.PixOffset(x, y)
			out.Pix[o] = img.Bytes[i]
			out.Pix[o+1] = img.Bytes[i+1]
			out.Pix[o+2] = img.Bytes[i+2]
			out.Pix[o+3] = 0xff
		}
	}
	return out
}
