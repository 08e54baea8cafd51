package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pshebel/lazer/internal/flow"
	"github.com/pshebel/lazer/internal/lazerapi"
	"github.com/pshebel/lazer/internal/refdata"
	"github.com/pshebel/lazer/internal/wizard"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var frequency string
	var additional string
	var externalForm bool

	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Review a processed draft and submit the final report",
		Long: `Report walks you through the selection steps for a processed draft
(vehicle, address, violation type), prefills the intake form from the
detection results, and submits it.

A submission id is minted and saved before the report is sent, so a retry
after a network failure files under the same id instead of duplicating.`,
		Example: `  # Review and submit draft 3
  lazer report 3

  # Print a pre-filled external form URL instead of submitting
  lazer report 3 --external-form`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid draft id %q: %w", args[0], err)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			d, err := app.store.Load(id)
			if err != nil {
				return err
			}
			if d.Submitted {
				return fmt.Errorf("draft %d was already submitted", id)
			}

			w := &wizard.Wizard{
				Store:  app.store,
				Prompt: newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
			}
			done, err := w.Run(d)
			if err != nil {
				if errors.Is(err, wizard.ErrNotProcessed) {
					return fmt.Errorf("draft %d has no detection results yet; run `lazer reprocess %d` first", id, id)
				}
				return err
			}
			if !done {
				fmt.Fprintln(cmd.OutOrStdout(), "Review cancelled; selections so far were kept.")
				return nil
			}

			reports := &flow.ReportFlow{Client: app.client, Store: app.store}
			r, err := reports.Prefill(d)
			if err != nil {
				return err
			}

			if frequency != "" {
				r.OccurrenceFrequency = refdata.BestMatch(refdata.FieldOccurrenceFrequency, frequency)
			}
			if additional != "" {
				r.AdditionalInformation = additional
			}

			printReport(cmd, r)

			if externalForm {
				fmt.Fprintln(cmd.OutOrStdout(), "Submit manually at:")
				fmt.Fprintln(cmd.OutOrStdout(), flow.ExternalForm(r))
				return nil
			}

			if err := reports.Submit(cmd.Context(), d, r); err != nil {
				var rejected *lazerapi.RejectedError
				if errors.As(err, &rejected) {
					return fmt.Errorf("report rejected: %s", rejected.Message)
				}
				if errors.Is(err, lazerapi.ErrRetriable) {
					return fmt.Errorf("submission failed, draft %d kept for retry: %w", id, err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Report submitted. Thank you!")
			return nil
		},
	}

	cmd.Flags().StringVar(&frequency, "frequency", "", "Override how often the violation occurs")
	cmd.Flags().StringVar(&additional, "notes", "", "Additional information to include with the report")
	cmd.Flags().BoolVar(&externalForm, "external-form", false, "Print a pre-filled external form URL instead of submitting")

	return cmd
}

func printReport(cmd *cobra.Command, r *lazerapi.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Report summary:")
	fmt.Fprintf(out, "  Observed:   %s %s\n", r.DateObserved, r.TimeObserved)
	fmt.Fprintf(out, "  Vehicle:    %s %s, %s %s\n", r.Make, r.Model, r.VehicleColor, r.BodyStyle)
	fmt.Fprintf(out, "  Violation:  %s (%s)\n", r.ViolationObserved, r.OccurrenceFrequency)
	fmt.Fprintf(out, "  Location:   %s %s, %s\n", r.BlockNumber, r.StreetName, r.ZipCode)
	if r.AdditionalInformation != "" {
		fmt.Fprintf(out, "  Notes:      %s\n", r.AdditionalInformation)
	}
}

func newReprocessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reprocess ID",
		Short: "Re-run detection on a draft, discarding earlier selections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid draft id %q: %w", args[0], err)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			d, err := app.store.Load(id)
			if err != nil {
				return err
			}

			detect := &flow.DetectionFlow{Client: app.client, Store: app.store, Media: app.media}
			if err := detect.Reprocess(cmd.Context(), d); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Detection complete: %d vehicle candidate(s), address %q\n", len(d.Raw.Vehicles), d.Address)
			return nil
		},
	}
}
