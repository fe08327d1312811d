package destination

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/tripdex/internal/domain/geo"
)

// DefaultCountry is applied when a source record omits country.
const DefaultCountry = "USA"

// Record is one travel destination as stored in a source file and in the catalog snapshot.
type Record struct {
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	State             string     `json:"state,omitempty"`
	Country           string     `json:"country"`
	Description       string     `json:"description"`
	Activities        StringList `json:"activities"`
	Scenery           StringList `json:"scenery"`
	Amenities         StringList `json:"amenities"`
	BestSeason        StringList `json:"best_season"`
	TravelTime        string     `json:"travel_time,omitempty"`
	NearbyAttractions StringList `json:"nearby_attractions"`
	Keywords          StringList `json:"keywords"`
	Latitude          *float64   `json:"latitude,omitempty"`
	Longitude         *float64   `json:"longitude,omitempty"`
	Filename          string     `json:"filename"`
}

// Parse decodes a source file body into a Record keyed by filename.
// Name and location are required; country defaults to DefaultCountry.
func Parse(filename string, data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, errors.New("empty file")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode: %w", err)
	}
	r.Filename = filename
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	r.ApplyDefaults()
	return r, nil
}

// Validate checks required fields.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Location) == "" {
		return errors.New("location is required")
	}
	if r.Filename == "" {
		return errors.New("filename is required")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return errors.New("latitude and longitude must be set together")
	}
	return nil
}

// ApplyDefaults fills optional fields with their documented defaults.
func (r *Record) ApplyDefaults() {
	if r.Country == "" {
		r.Country = DefaultCountry
	}
	if r.NearbyAttractions == nil {
		r.NearbyAttractions = StringList{}
	}
	if r.Keywords == nil {
		r.Keywords = StringList{}
	}
}

// HasCoordinates reports whether the record carries a valid lat/lon pair.
func (r *Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil &&
		geo.ValidateCoordinates(*r.Latitude, *r.Longitude)
}

// Point returns the record coordinates when present.
func (r *Record) Point() (geo.Point, bool) {
	if !r.HasCoordinates() {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *r.Latitude, Lon: *r.Longitude}, true
}

// SetPoint stores coordinates on the record.
func (r *Record) SetPoint(p geo.Point) {
	lat, lon := p.Lat, p.Lon
	r.Latitude = &lat
	r.Longitude = &lon
}

// ClearPoint removes coordinates from the record.
func (r *Record) ClearPoint() {
	r.Latitude = nil
	r.Longitude = nil
}

// LocationLabel renders coordinates for display, or "location unknown" when absent.
func (r *Record) LocationLabel() string {
	p, ok := r.Point()
	if !ok {
		return "location unknown"
	}
	return p.String()
}

// StringList is a JSON string array that drops null entries on decode.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, s := range raw {
		if s != nil {
			out = append(out, *s)
		}
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler. A nil list is written as [].
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Head returns at most n leading entries.
func (l StringList) Head(n int) []string {
	if len(l) <= n {
		return l
	}
	return l[:n]
}

// Contains reports case-insensitive membership.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
