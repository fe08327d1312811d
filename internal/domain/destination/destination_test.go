package destination

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kailas-cloud/tripdex/internal/domain/geo"
)

func TestParse_Defaults(t *testing.T) {
	r, err := Parse("aspen.json", []byte(`{
		"name": "Aspen",
		"location": "Aspen",
		"state": "Colorado",
		"description": "Mountain town",
		"activities": ["skiing", null, "hiking"],
		"scenery": null,
		"amenities": ["spas"],
		"best_season": ["Winter"]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Filename != "aspen.json" {
		t.Errorf("Filename = %q", r.Filename)
	}
	if r.Country != DefaultCountry {
		t.Errorf("Country = %q, want %q", r.Country, DefaultCountry)
	}
	if len(r.Activities) != 2 || r.Activities[1] != "hiking" {
		t.Errorf("Activities = %v, want null entries dropped", r.Activities)
	}
	if r.Scenery != nil {
		t.Errorf("Scenery = %v, want nil", r.Scenery)
	}
	if r.NearbyAttractions == nil || r.Keywords == nil {
		t.Error("expected empty default lists")
	}
	if r.HasCoordinates() {
		t.Error("expected no coordinates")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "  ", "empty file"},
		{"malformed", `{"name": `, "decode"},
		{"missing name", `{"location": "x"}`, "name is required"},
		{"missing location", `{"name": "x"}`, "location is required"},
		{"half coordinates", `{"name": "x", "location": "y", "latitude": 1}`, "together"},
		{"list of numbers", `{"name": "x", "location": "y", "activities": [1]}`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("f.json", []byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestRecord_Coordinates(t *testing.T) {
	r := Record{Name: "x", Location: "y", Filename: "f.json"}
	if got := r.LocationLabel(); got != "location unknown" {
		t.Errorf("LocationLabel() = %q", got)
	}

	r.SetPoint(geo.Point{Lat: 10.5, Lon: -20.25})
	p, ok := r.Point()
	if !ok || p.Lat != 10.5 || p.Lon != -20.25 {
		t.Fatalf("Point() = %v, %v", p, ok)
	}
	if got := r.LocationLabel(); got != "10.500000, -20.250000" {
		t.Errorf("LocationLabel() = %q", got)
	}

	bad := 200.0
	r.Longitude = &bad
	if r.HasCoordinates() {
		t.Error("out-of-range longitude must not count as coordinates")
	}

	r.ClearPoint()
	if r.Latitude != nil || r.Longitude != nil {
		t.Error("ClearPoint left coordinates")
	}
}

func TestRecord_MarshalRoundTrip(t *testing.T) {
	lat, lon := 1.0, 2.0
	in := Record{
		Name: "A", Location: "L", Country: "USA", Filename: "a.json",
		Activities: StringList{"ski"}, Latitude: &lat, Longitude: &lon,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"scenery":[]`) {
		t.Errorf("nil list should marshal as [], got %s", data)
	}
	out, err := Parse("a.json", data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *out.Latitude != 1 || *out.Longitude != 2 || out.Activities[0] != "ski" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestStringList_Helpers(t *testing.T) {
	l := StringList{"Spring", "Summer", "Fall"}
	if got := l.Head(2); len(got) != 2 || got[1] != "Summer" {
		t.Errorf("Head(2) = %v", got)
	}
	if got := l.Head(10); len(got) != 3 {
		t.Errorf("Head(10) = %v", got)
	}
	if !l.Contains("summer") {
		t.Error("Contains should be case-insensitive")
	}
	if l.Contains("Winter") {
		t.Error("unexpected Contains(Winter)")
	}
}
