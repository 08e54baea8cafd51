// Package export writes draft history to JSONL or Parquet files so reports
// can be analyzed outside the app.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/pshebel/lazer/internal/draft"
)

// Row is a flattened draft record, one per exported draft.
type Row struct {
	ID            int64   `json:"id" parquet:"id"`
	CapturedAt    string  `json:"captured_at" parquet:"captured_at"`
	Latitude      float64 `json:"latitude" parquet:"latitude"`
	Longitude     float64 `json:"longitude" parquet:"longitude"`
	Accuracy      float64 `json:"accuracy" parquet:"accuracy"`
	Processed     bool    `json:"processed" parquet:"processed"`
	Submitted     bool    `json:"submitted" parquet:"submitted"`
	SubmissionID  string  `json:"submission_id" parquet:"submission_id"`
	Address       string  `json:"address" parquet:"address"`
	ViolationType string  `json:"violation_type" parquet:"violation_type"`
	VehicleType   string  `json:"vehicle_type" parquet:"vehicle_type"`
	VehicleMake   string  `json:"vehicle_make" parquet:"vehicle_make"`
	VehicleModel  string  `json:"vehicle_model" parquet:"vehicle_model"`
	VehicleColor  string  `json:"vehicle_color" parquet:"vehicle_color"`
}

// FromDraft flattens a draft into an export row.
func FromDraft(d *draft.Draft) Row {
	row := Row{
		ID:            d.ID,
		CapturedAt:    d.Time.Format(time.RFC3339),
		Processed:     d.Processed,
		Submitted:     d.Submitted,
		SubmissionID:  d.SubmissionID,
		Address:       d.Address,
		ViolationType: d.ViolationType,
	}
	if d.Position != nil {
		row.Latitude = d.Position.Latitude
		row.Longitude = d.Position.Longitude
		row.Accuracy = d.Position.Accuracy
	}
	if d.Vehicle != nil {
		v := d.Vehicle.Vehicle
		row.VehicleType = v.Type
		if len(v.Props.MakeModel) > 0 {
			row.VehicleMake = v.Props.MakeModel[0].Make
			row.VehicleModel = v.Props.MakeModel[0].Model
		}
		if len(v.Props.Color) > 0 {
			row.VehicleColor = v.Props.Color[0].Value
		}
	}
	return row
}

// Write exports drafts to path; the format follows the file extension
// (.jsonl or .parquet).
func Write(path string, drafts []*draft.Draft) error {
	rows := make([]Row, 0, len(drafts))
	for _, d := range drafts {
		rows = append(rows, FromDraft(d))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return writeParquet(path, rows)
	case ".jsonl", ".json":
		return writeJSONL(path, rows)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func writeJSONL(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.ID, err)
		}
	}
	slog.Info("exported drafts", "path", path, "rows", len(rows), "format", "jsonl")
	return nil
}

func writeParquet(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	slog.Info("exported drafts", "path", path, "rows", len(rows), "format", "parquet")
	return nil
}
