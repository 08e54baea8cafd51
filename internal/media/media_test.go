package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"strings"
	"testing"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestSavePhoto(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	data := testJPEG(t, 1024, 768)
	imageName, thumbName, err := s.SavePhoto(data)
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	s.Flush()

	saved, err := os.ReadFile(s.Path(imageName))
	if err != nil {
		t.Fatalf("read full-res asset: %v", err)
	}
	if !bytes.Equal(saved, data) {
		t.Error("Full-resolution copy does not match captured bytes")
	}

	thumbFile, err := os.Open(s.Path(thumbName))
	if err != nil {
		t.Fatalf("read thumbnail asset: %v", err)
	}
	defer thumbFile.Close()
	cfg, _, err := image.DecodeConfig(thumbFile)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width > 512 {
		t.Errorf("Thumbnail width %d exceeds cap", cfg.Width)
	}
}

func TestThumbnailFailureDoesNotBlockSave(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	// Not an image at all; full-res still saves, thumbnail just logs
	imageName, _, err := s.SavePhoto([]byte("not an image"))
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	s.Flush()

	if _, err := os.Stat(s.Path(imageName)); err != nil {
		t.Errorf("Full-res asset missing: %v", err)
	}
}

func TestDataURL(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	imageName, _, err := s.SavePhoto(testJPEG(t, 64, 64))
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}

	url, err := s.DataURL(imageName)
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("Unexpected data URL prefix: %.40s", url)
	}
}

func TestRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	imageName, _, err := s.SavePhoto(testJPEG(t, 32, 32))
	if err != nil {
		t.Fatalf("SavePhoto: %v", err)
	}
	if err := s.Remove(imageName); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(s.Path(imageName)); !os.IsNotExist(err) {
		t.Error("Asset still present after Remove")
	}
}
