package address

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Parsed
		wantErr  bool
	}{
		{
			name:     "standard candidate",
			input:    "2300 Wharton St, Philadelphia, PA 19146, USA",
			expected: Parsed{BlockNumber: "2300", StreetName: "WHARTON ST", ZipCode: "19146"},
		},
		{
			name:     "zip+4",
			input:    "123 Main St, Philadelphia, PA 19107-1234, USA",
			expected: Parsed{BlockNumber: "123", StreetName: "MAIN ST", ZipCode: "19107"},
		},
		{
			name:     "multi-word street",
			input:    "1400 John F Kennedy Blvd, Philadelphia, PA 19107, USA",
			expected: Parsed{BlockNumber: "1400", StreetName: "JOHN F KENNEDY BLVD", ZipCode: "19107"},
		},
		{
			name:    "no street number",
			input:   "Wharton Square Park, Philadelphia, PA 19146, USA",
			wantErr: true,
		},
		{
			name:    "no zip",
			input:   "2300 Wharton St, Philadelphia, PA",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if *got != tt.expected {
				t.Errorf("Parse(%q) = %+v, expected %+v", tt.input, *got, tt.expected)
			}
		})
	}
}

func TestViable(t *testing.T) {
	tests := []struct {
		candidate string
		expected  bool
	}{
		{"123 Main St, Philadelphia, PA, 19107", true},
		{"Broad & Market", false},                        // too few segments, no digit
		{"Main St, Philadelphia", false},                 // too few segments
		{"Broad St & Market St, Philadelphia, PA, 19107", false}, // intersection
		{"123 Main St, Philadelphia, PA", false},         // only 3 segments
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			if got := Viable(tt.candidate); got != tt.expected {
				t.Errorf("Viable(%q) = %v, expected %v", tt.candidate, got, tt.expected)
			}
		})
	}
}

func TestFilterCandidates(t *testing.T) {
	input := []string{
		"123 Main St, Philadelphia, PA, 19107",
		"Broad & Market",
		"Main St, Philadelphia",
	}
	got := FilterCandidates(input)
	expected := []string{"123 Main St, Philadelphia, PA, 19107"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("FilterCandidates = %v, expected %v", got, expected)
	}
}
