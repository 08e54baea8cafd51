// Package capture orchestrates taking a photo, resolving a geolocation fix
// and creating the draft a violation report starts from.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pshebel/lazer/internal/camera"
	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/geo"
	"github.com/pshebel/lazer/internal/media"
)

// Coordinator wires the capture capabilities together.
type Coordinator struct {
	Store   *draft.Store
	Media   *media.Store
	Camera  camera.Camera
	Locator geo.Locator

	// Timeout bounds the wait for an acceptable fix; zero means
	// geo.DefaultTimeout.
	Timeout time.Duration
}

type fixResult struct {
	fix *geo.Fix
	err error
}

// Capture takes a photo, persists it plus a new draft, and waits for a
// geolocation fix. A capture whose fix never resolves is an error: the
// draft and its assets are deleted and the user retries.
func (c *Coordinator) Capture(ctx context.Context) (*draft.Draft, error) {
	// The watch starts before the shutter so a fix can arrive while the
	// photo is being saved.
	fixCh := make(chan fixResult, 1)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		fix, err := geo.FirstAccurateFix(watchCtx, c.Locator, c.Timeout)
		fixCh <- fixResult{fix: fix, err: err}
	}()

	photo, err := c.Camera.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("photo capture failed: %w", err)
	}

	imageName, thumbName, err := c.Media.SavePhoto(photo)
	if err != nil {
		return nil, err
	}

	id, err := c.Store.AllocateID()
	if err != nil {
		return nil, err
	}

	d := &draft.Draft{
		ID:        id,
		Image:     imageName,
		Thumbnail: thumbName,
		Time:      time.Now(),
	}
	if err := c.Store.Save(d); err != nil {
		return nil, err
	}
	slog.Info("draft created", "id", d.ID, "image", imageName)

	result := <-fixCh
	if result.err != nil {
		// Delete the orphaned draft rather than leave an unusable record
		history := draft.NewHistory(c.Store, c.Media)
		if derr := history.Delete(d); derr != nil {
			slog.Warn("failed to delete abandoned draft", "id", d.ID, "err", derr)
		}
		if errors.Is(result.err, geo.ErrNoFix) {
			return nil, fmt.Errorf("could not determine your location, move somewhere with better reception and retry: %w", result.err)
		}
		return nil, fmt.Errorf("geolocation failed: %w", result.err)
	}

	d.Position = &draft.Position{
		Latitude:  result.fix.Latitude,
		Longitude: result.fix.Longitude,
		Accuracy:  result.fix.Accuracy,
	}
	if err := c.Store.Save(d); err != nil {
		return nil, err
	}
	slog.Info("position resolved", "id", d.ID,
		"latitude", result.fix.Latitude, "longitude", result.fix.Longitude,
		"accuracy", result.fix.Accuracy)

	return d, nil
}
