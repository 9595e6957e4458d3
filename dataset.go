package globe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// ErrMalformedDataset is returned when a dataset source cannot be decoded.
// No partial dataset is ever returned alongside it.
var ErrMalformedDataset = errors.New("malformed climate dataset")

// AnomalySample is one temperature-anomaly measurement. Lat is in [-90, 90],
// Lon in [-180, 360) and Value in °C relative to the baseline.
type AnomalySample struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
}

// UnmarshalJSON requires lat, lon and value to all be present, so null or
// partial records fail instead of decoding as a sample at (0, 0).
func (s *AnomalySample) UnmarshalJSON(b []byte) error {
	var rec struct {
		Lat   *float64 `json:"lat"`
		Lon   *float64 `json:"lon"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if rec.Lat == nil || rec.Lon == nil || rec.Value == nil {
		return fmt.Errorf("sample %s needs lat, lon and value", b)
	}
	*s = AnomalySample{Lat: *rec.Lat, Lon: *rec.Lon, Value: *rec.Value}
	return nil
}

// ClimateDataset maps years to their anomaly samples. It is immutable once
// built and safe for concurrent reads.
type ClimateDataset struct {
	byYear map[int][]AnomalySample
	years  []int
}

// NewClimateDataset copies the given samples into a dataset. Sample order
// within a year is preserved; it decides blending order when stamps overlap.
func NewClimateDataset(samples map[int][]AnomalySample) *ClimateDataset {
	d := &ClimateDataset{
		byYear: make(map[int][]AnomalySample, len(samples)),
		years:  make([]int, 0, len(samples)),
	}
	for year, s := range samples {
		d.byYear[year] = slices.Clone(s)
		d.years = append(d.years, year)
	}
	slices.Sort(d.years)
	return d
}

// ParseDataset decodes a JSON object mapping year strings to arrays of
// {lat, lon, value} records. Any decoding error, non-integer key or
// trailing data rejects the whole dataset with ErrMalformedDataset.
func ParseDataset(r io.Reader) (*ClimateDataset, error) {
	dec := json.NewDecoder(r)
	var raw map[string][]AnomalySample
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrMalformedDataset)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedDataset)
	}

	byYear := make(map[int][]AnomalySample, len(raw))
	for key, samples := range raw {
		year, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: year key %q is not an integer", ErrMalformedDataset, key)
		}
		if _, dup := byYear[year]; dup {
			return nil, fmt.Errorf("%w: year %d appears more than once", ErrMalformedDataset, year)
		}
		byYear[year] = samples
	}
	return &ClimateDataset{byYear: byYear, years: sortedKeys(byYear)}, nil
}

// Samples returns the samples for year, or nil if the year is absent. The
// returned slice is shared and must not be modified.
func (d *ClimateDataset) Samples(year int) []AnomalySample {
	if d == nil {
		return nil
	}
	return d.byYear[year]
}

// Years returns all years in ascending order. The returned slice must not be
// modified.
func (d *ClimateDataset) Years() []int {
	if d == nil {
		return nil
	}
	return d.years
}

// Len returns the number of years in the dataset.
func (d *ClimateDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.years)
}

// Range returns the first and last year. ok is false for an empty dataset.
func (d *ClimateDataset) Range() (first, last int, ok bool) {
	if d.Len() == 0 {
		return 0, 0, false
	}
	return d.years[0], d.years[len(d.years)-1], true
}

func sortedKeys(m map[int][]AnomalySample) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
