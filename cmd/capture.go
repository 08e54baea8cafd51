package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pshebel/lazer/internal/camera"
	"github.com/pshebel/lazer/internal/capture"
	"github.com/pshebel/lazer/internal/flow"
	"github.com/pshebel/lazer/internal/geo"
	"github.com/pshebel/lazer/internal/lazerapi"
	"github.com/spf13/cobra"
)

func newCaptureCmd() *cobra.Command {
	var photo string
	var lat, lon, accuracy float64
	var timeout time.Duration
	var noSubmit bool

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Photograph a violation and send it for vehicle detection",
		Long: `Capture creates a new draft from a photo and a position fix, then submits
it to the detection service so the review step has vehicle and address
candidates to offer.

When the detection service is unreachable the draft is kept locally; run
reprocess once you are back online.`,
		Example: `  # Capture from a photo on disk at a known position
  lazer capture --photo violation.jpg --lat 39.9526 --lon -75.1652

  # Keep the draft local without contacting the detection service
  lazer capture --photo violation.jpg --lat 39.9526 --lon -75.1652 --no-submit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			coordinator := &capture.Coordinator{
				Store:   app.store,
				Media:   app.media,
				Camera:  camera.FileCamera{Path: photo},
				Locator: geo.StaticLocator{Fix: geo.Fix{Latitude: lat, Longitude: lon, Accuracy: accuracy}},
				Timeout: timeout,
			}

			d, err := coordinator.Capture(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Captured draft %d at %.4f, %.4f\n", d.ID, d.Position.Latitude, d.Position.Longitude)

			if noSubmit {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipping detection; run `lazer reprocess %d` when ready.\n", d.ID)
				return nil
			}

			detect := &flow.DetectionFlow{Client: app.client, Store: app.store, Media: app.media}
			if err := detect.Submit(cmd.Context(), d); err != nil {
				if errors.Is(err, lazerapi.ErrRetriable) {
					slog.Warn("Detection service unavailable, draft kept for later", "id", d.ID, "err", err)
					fmt.Fprintf(cmd.OutOrStdout(), "Detection failed; draft %d saved. Run `lazer reprocess %d` to retry.\n", d.ID, d.ID)
					return nil
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detection complete: %d vehicle candidate(s), address %q\n", len(d.Raw.Vehicles), d.Address)
			fmt.Fprintf(cmd.OutOrStdout(), "Run `lazer report %d` to review and submit.\n", d.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "Path to the violation photo (required)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the capture (required)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the capture (required)")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 10, "Reported accuracy of the fix in meters")
	cmd.Flags().DurationVar(&timeout, "timeout", geo.DefaultTimeout, "How long to wait for an acceptable fix")
	cmd.Flags().BoolVar(&noSubmit, "no-submit", false, "Save the draft without contacting the detection service")

	_ = cmd.MarkFlagRequired("photo")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}
