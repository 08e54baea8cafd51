// Package camera provides the photo capture capability.
package camera

import (
	"context"
	"fmt"
	"os"
)

// Camera produces one photo per Capture call. Hardware errors propagate to
// the caller and abort the capture flow.
type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// FileCamera reads an already-taken photo from disk, for CLI use.
type FileCamera struct {
	Path string
}

// Capture returns the file's contents.
func (c FileCamera) Capture(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %s: %w", c.Path, err)
	}
	return data, nil
}
