package draft

import "time"

// Position is a geolocation fix attached to a draft once one resolves.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// MakeModel is one make/model candidate from the plate reader.
type MakeModel struct {
	Make  string  `json:"make"`
	Model string  `json:"model"`
	Score float64 `json:"score"`
}

// ValueProp is a scored string property from the plate reader.
type ValueProp struct {
	Value string  `json:"value"`
	Score float64 `json:"score"`
}

// VehicleProps holds the detected vehicle attributes.
type VehicleProps struct {
	MakeModel []MakeModel `json:"make_model"`
	Color     []ValueProp `json:"color"`
}

// VehicleDetail is the vehicle portion of a detection candidate.
type VehicleDetail struct {
	Score float64      `json:"score"`
	Type  string       `json:"type"`
	Props VehicleProps `json:"props"`
}

// PlateProps holds the detected plate number and region.
type PlateProps struct {
	Plate  []ValueProp `json:"plate"`
	Region []ValueProp `json:"region"`
}

// Plate is the license plate portion of a detection candidate.
type Plate struct {
	Props PlateProps `json:"props"`
}

// Vehicle is one candidate from the detection response's vehicles array.
// The server sorts candidates by score, highest first.
type Vehicle struct {
	Vehicle VehicleDetail `json:"vehicle"`
	Plate   *Plate        `json:"plate,omitempty"`
}

// Detection is the detection service's response for one submission.
type Detection struct {
	Vehicles     []Vehicle `json:"vehicles"`
	Address      string    `json:"address"`
	Addresses    []string  `json:"addresses"`
	SubmissionID string    `json:"submissionId"`
}

// Draft is a single in-progress or completed violation report. It is
// created at photo-capture time and mutated in place as it moves through
// detection, selection and final submission.
type Draft struct {
	ID            int64      `json:"id"`
	Image         string     `json:"image"`
	Thumbnail     string     `json:"thumbnail"`
	Time          time.Time  `json:"time"`
	Position      *Position  `json:"position"`
	Processed     bool       `json:"processed"`
	Raw           *Detection `json:"raw"`
	Vehicle       *Vehicle   `json:"vehicle"`
	Address       string     `json:"address"`
	ViolationType string     `json:"violationType"`
	SubmissionID  string     `json:"submissionId"`
	Submitted     bool       `json:"submitted"`
}
