package imaging

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/jnovak/facecat/internal/recognizer"
)

func solidImage(w, h int) recognizer.Image {
	buf := make([]byte, w*h*3)
	for i := range buf {
		buf[i] = 128
	}
	return recognizer.Image{Width: w, Height: h, Channels: 3, Bytes: buf}
}

func TestWriteThumbnail_CreatesSquareJPEG(t *testing.T) {
	dir := t.TempDir()
	img := solidImage(200, 200)
	bbox := recognizer.BBox{X: 50, Y: 50, Width: 60, Height: 60}

	if err := WriteThumbnail(img, bbox, dir, 42, 100); err != nil {
		t.Fatalf("WriteThumbnail: %v", err)
	}

	path := ThumbnailPath(dir, 42)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected thumbnail file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("thumbnail file is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if format != "jpeg" || cfg.Width != 100 || cfg.Height != 100 {
		t.Fatalf("want 100x100 jpeg, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}

func TestThumbnailPath_Format(t *testing.T) {
	got := ThumbnailPath("/tmp/thumbs", 7)
	want := filepath.Join("/tmp/thumbs", "face_7.jpg")
	if got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}
