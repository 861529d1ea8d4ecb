package polyline

import (
	"errors"
	"math"
	"testing"
)

func TestDecode_ValidPolyline(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		expected []Coordinate
	}{
		{
			name:    "single point",
			encoded: "_p~iF~ps|U",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
			},
		},
		{
			name:    "three points - Google example",
			encoded: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
			expected: []Coordinate{
				{Lat: 38.5, Lng: -120.2},
				{Lat: 40.7, Lng: -120.95},
				{Lat: 43.252, Lng: -126.453},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Decode(tt.encoded)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d coordinates, got %d", len(tt.expected), len(result))
			}

			for i, coord := range result {
				if !coordsEqual(coord, tt.expected[i], 0.001) {
					t.Errorf("coordinate %d: expected %+v, got %+v", i, tt.expected[i], coord)
				}
			}
		})
	}
}

func TestDecode_EmptyString(t *testing.T) {
	if result := Decode(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestDecodeStrict_Truncated(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    int
	}{
		{name: "latitude without longitude", encoded: "_p~iF", want: 0},
		{name: "unterminated chunk", encoded: "_p~iF~ps|U_ul", want: 1},
		{name: "byte below alphabet", encoded: "_p~iF~ps|U !", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords, err := DecodeStrict(tt.encoded)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
			if len(coords) != tt.want {
				t.Errorf("expected %d decoded coordinates before the error, got %d", tt.want, len(coords))
			}
		})
	}
}

func TestDecodeStrict_Valid(t *testing.T) {
	coords, err := DecodeStrict("_p~iF~ps|U_ulLnnqC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coords) != 2 {
		t.Fatalf("expected 2 coordinates, got %d", len(coords))
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		coords []Coordinate
	}{
		{
			name:   "single point",
			coords: []Coordinate{{Lat: 29.76, Lng: -95.37}},
		},
		{
			name: "Katy to Houston",
			coords: []Coordinate{
				{Lat: 29.78580, Lng: -95.82440},
				{Lat: 29.76043, Lng: -95.36980},
			},
		},
		{
			name: "Houston to Orlando via New Orleans",
			coords: []Coordinate{
				{Lat: 29.76043, Lng: -95.36980},
				{Lat: 29.95107, Lng: -90.07153},
				{Lat: 28.53834, Lng: -81.37924},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.coords)
			if encoded == "" {
				t.Fatal("expected non-empty encoded string")
			}

			decoded, err := DecodeStrict(encoded)
			if err != nil {
				t.Fatalf("round-trip decode failed: %v", err)
			}
			if len(decoded) != len(tt.coords) {
				t.Fatalf("round-trip: expected %d coordinates, got %d", len(tt.coords), len(decoded))
			}
			for i, coord := range decoded {
				if !coordsEqual(coord, tt.coords[i], 0.00001) {
					t.Errorf("round-trip coordinate %d: expected %+v, got %+v", i, tt.coords[i], coord)
				}
			}
		})
	}
}

func TestEncode_EmptyCoordinates(t *testing.T) {
	if result := Encode(nil); result != "" {
		t.Errorf("expected empty string for nil coordinates, got %q", result)
	}
	if result := Encode([]Coordinate{}); result != "" {
		t.Errorf("expected empty string for empty coordinates, got %q", result)
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		name           string
		coords         []Coordinate
		expectedMeters float64
		tolerance      float64
	}{
		{name: "empty", coords: nil},
		{name: "single point", coords: []Coordinate{{Lat: 29.76, Lng: -95.37}}},
		{
			name: "Katy to downtown Houston - roughly 44km",
			coords: []Coordinate{
				{Lat: 29.7858, Lng: -95.8244},
				{Lat: 29.7604, Lng: -95.3698},
			},
			expectedMeters: 44000,
			tolerance:      2000,
		},
		{
			name: "1 degree latitude at equator - roughly 111km",
			coords: []Coordinate{
				{Lat: 0.0, Lng: 0.0},
				{Lat: 1.0, Lng: 0.0},
			},
			expectedMeters: 111000,
			tolerance:      1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Length(tt.coords)
			if diff := math.Abs(result - tt.expectedMeters); diff > tt.tolerance {
				t.Errorf("expected ~%.0fm (±%.0f), got %.0fm", tt.expectedMeters, tt.tolerance, result)
			}
		})
	}
}

func coordsEqual(a, b Coordinate, tolerance float64) bool {
	return math.Abs(a.Lat-b.Lat) <= tolerance && math.Abs(a.Lng-b.Lng) <= tolerance
}

func BenchmarkDecode(b *testing.B) {
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Decode(encoded)
	}
}
