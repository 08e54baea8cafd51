// Package flow implements the two network stages of a report: the
// detection submission and the final report submission.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/lazerapi"
	"github.com/pshebel/lazer/internal/media"
)

// ErrNoPosition is returned when a draft is submitted for detection before
// its geolocation fix resolved.
var ErrNoPosition = errors.New("draft has no position")

// DetectionFlow uploads a draft's capture to the detection service and
// merges the results back onto the draft.
type DetectionFlow struct {
	Client *lazerapi.Client
	Store  *draft.Store
	Media  *media.Store
}

// Submit sends the draft's image, position and capture time for detection.
// On failure the draft is left unmodified and the step can be re-invoked.
func (f *DetectionFlow) Submit(ctx context.Context, d *draft.Draft) error {
	if d.Position == nil {
		return ErrNoPosition
	}

	dataURL, err := f.Media.DataURL(d.Image)
	if err != nil {
		return err
	}

	detection, err := f.Client.Submit(ctx, lazerapi.DetectionRequest{
		Latitude:     d.Position.Latitude,
		Longitude:    d.Position.Longitude,
		CapturedAt:   d.Time,
		ImageDataURL: dataURL,
	})
	if err != nil {
		return fmt.Errorf("processing error: %w", err)
	}

	d.Raw = detection
	d.Address = detection.Address
	d.SubmissionID = detection.SubmissionID
	d.Processed = true
	if len(detection.Vehicles) == 1 {
		d.Vehicle = &detection.Vehicles[0]
	}

	if err := f.Store.Save(d); err != nil {
		return err
	}
	slog.Info("detection results merged", "id", d.ID,
		"vehicles", len(detection.Vehicles), "addresses", len(detection.Addresses),
		"submission_id", detection.SubmissionID)
	return nil
}

// Reprocess discards the draft's detection results and any selections made
// from them, then submits again.
func (f *DetectionFlow) Reprocess(ctx context.Context, d *draft.Draft) error {
	d.Processed = false
	d.Raw = nil
	d.Address = ""
	d.Vehicle = nil
	d.ViolationType = ""
	if err := f.Store.Save(d); err != nil {
		return err
	}
	return f.Submit(ctx, d)
}
