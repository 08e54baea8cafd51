package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pshebel/lazer/internal/address"
	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/lazerapi"
	"github.com/pshebel/lazer/internal/refdata"
)

// ExternalFormURL is the agency's own web form, offered as a manual
// fallback when API submission is unavailable.
const ExternalFormURL = "https://ppa-forms-neu.powerappsportals.com/Mobility-Access-Request/"

// ErrIncomplete is returned when a draft is missing a selection the report
// requires.
var ErrIncomplete = errors.New("draft is missing required selections")

// ReportFlow finalizes a reviewed draft and files it.
type ReportFlow struct {
	Client *lazerapi.Client
	Store  *draft.Store
}

// Prefill builds the editable report fields from the draft. Detection
// values are matched onto the form's option lists; the result is a
// suggestion the user may still edit before Submit.
func (f *ReportFlow) Prefill(d *draft.Draft) (*lazerapi.Report, error) {
	if d.ViolationType == "" || d.Address == "" {
		return nil, ErrIncomplete
	}

	parsed, err := address.Parse(d.Address)
	if err != nil {
		return nil, err
	}

	r := &lazerapi.Report{
		DateObserved:        d.Time.Format("01/02/2006"),
		TimeObserved:        d.Time.Format("03:04 PM"),
		ViolationObserved:   refdata.BestMatch(refdata.FieldViolationObserved, d.ViolationType),
		OccurrenceFrequency: "Unsure",
		BlockNumber:         parsed.BlockNumber,
		StreetName:          parsed.StreetName,
		ZipCode:             parsed.ZipCode,
	}

	if d.Vehicle != nil {
		v := d.Vehicle.Vehicle
		if len(v.Props.MakeModel) > 0 {
			r.Make = refdata.BestMatch(refdata.FieldMake, v.Props.MakeModel[0].Make)
			r.Model = v.Props.MakeModel[0].Model
		}
		if len(v.Props.Color) > 0 {
			r.VehicleColor = refdata.BestMatch(refdata.FieldVehicleColor, v.Props.Color[0].Value)
		}
		if v.Type != "" {
			r.BodyStyle = refdata.BestMatch(refdata.FieldBodyStyle, v.Type)
		}
		// The form has no plate fields; fold the plate into the free-text
		// additional information instead.
		if plate, region, ok := plateInfo(d.Vehicle); ok {
			r.AdditionalInformation = fmt.Sprintf("License Plate: %s (%s)", plate, region)
		}
	}

	return r, nil
}

// plateInfo extracts and normalizes the detected plate number and region.
func plateInfo(v *draft.Vehicle) (plate, region string, ok bool) {
	if v.Plate == nil || len(v.Plate.Props.Plate) == 0 {
		return "", "", false
	}
	plate = strings.ToUpper(v.Plate.Props.Plate[0].Value)
	if len(v.Plate.Props.Region) > 0 {
		region = v.Plate.Props.Region[0].Value
		region = strings.TrimPrefix(strings.ToLower(region), "us-")
		region = strings.ToUpper(region)
	}
	return plate, region, true
}

// Submit files the report. The draft's submission id is reused when
// present so a retried submission never creates a duplicate server-side
// report; otherwise a fresh id is minted and persisted before the call.
func (f *ReportFlow) Submit(ctx context.Context, d *draft.Draft, r *lazerapi.Report) error {
	if d.SubmissionID == "" {
		d.SubmissionID = uuid.NewString()
		if err := f.Store.Save(d); err != nil {
			return err
		}
		slog.Info("minted submission id", "id", d.ID, "submission_id", d.SubmissionID)
	}
	r.SubmissionID = d.SubmissionID

	if err := f.Client.Report(ctx, *r); err != nil {
		return err
	}

	d.Submitted = true
	if err := f.Store.Save(d); err != nil {
		return err
	}
	slog.Info("report submitted", "id", d.ID, "submission_id", d.SubmissionID)
	return nil
}

// ExternalForm returns the pre-filled fallback form URL. It performs no
// local state mutation.
func ExternalForm(r *lazerapi.Report) string {
	q := url.Values{}
	q.Set("date_observed", r.DateObserved)
	q.Set("time_observed", r.TimeObserved)
	q.Set("make", r.Make)
	q.Set("model", r.Model)
	q.Set("body_style", r.BodyStyle)
	q.Set("vehicle_color", r.VehicleColor)
	q.Set("violation_observed", r.ViolationObserved)
	q.Set("occurrence_frequency", r.OccurrenceFrequency)
	q.Set("block_number", r.BlockNumber)
	q.Set("street_name", r.StreetName)
	q.Set("zip_code", r.ZipCode)
	q.Set("additional_information", r.AdditionalInformation)
	return ExternalFormURL + "?" + q.Encode()
}
