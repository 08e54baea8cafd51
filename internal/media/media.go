// Package media stores a draft's photo assets on disk: the full-resolution
// capture, a downscaled thumbnail, and the quality-reduced JPEG data URL
// sent to the detection service.
package media

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
)

const (
	thumbnailMaxWidth = 512
	thumbnailQuality  = 60
	dataURLQuality    = 70
)

// Store writes photo assets into a single directory.
type Store struct {
	dir string
	wg  sync.WaitGroup
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SavePhoto persists the full-resolution photo and kicks off thumbnail
// generation in the background. Thumbnail failure never fails the capture;
// both asset names are returned immediately.
func (s *Store) SavePhoto(data []byte) (imageName, thumbName string, err error) {
	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])
	imageName = hash + ".jpg"
	thumbName = hash + "_thumb.jpg"

	if err := os.WriteFile(s.Path(imageName), data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save photo: %w", err)
	}
	slog.Info("photo saved", "filename", imageName, "bytes", len(data))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.writeThumbnail(data, thumbName); err != nil {
			slog.Warn("failed to generate thumbnail", "filename", thumbName, "err", err)
		}
	}()

	return imageName, thumbName, nil
}

func (s *Store) writeThumbnail(data []byte, name string) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode photo: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > thumbnailMaxWidth {
		height = height * thumbnailMaxWidth / width
		width = thumbnailMaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return os.WriteFile(s.Path(name), buf.Bytes(), 0644)
}

// DataURL re-encodes the named asset as a quality-reduced JPEG data URL for
// the detection submission.
func (s *Store) DataURL(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode photo: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: dataURLQuality}); err != nil {
		return "", fmt.Errorf("failed to re-encode photo: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Remove deletes the named asset. Callers treat fs.ErrNotExist as benign.
func (s *Store) Remove(name string) error {
	return os.Remove(s.Path(name))
}

// Path returns the filesystem path of an asset name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Flush blocks until in-flight thumbnail writes finish. Call before exit.
func (s *Store) Flush() {
	s.wg.Wait()
}
