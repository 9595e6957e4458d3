package globe

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

const sampleJSON = `{
	"2020": [{"lat": 10, "lon": 20, "value": 1.5}, {"lat": -5, "lon": 300, "value": -0.25}],
	"1900": [{"lat": 0, "lon": 0, "value": -0.5}],
	"1950": []
}`

func TestParseDataset(t *testing.T) {
	d, err := ParseDataset(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if got, want := d.Years(), []int{1900, 1950, 2020}; !slices.Equal(got, want) {
		t.Errorf("Years = %v, want %v", got, want)
	}
	if d.Len() != 3 {
		t.Errorf("Len = %d, want 3", d.Len())
	}
	s := d.Samples(2020)
	if len(s) != 2 {
		t.Fatalf("len(Samples(2020)) = %d, want 2", len(s))
	}
	if s[0] != (AnomalySample{Lat: 10, Lon: 20, Value: 1.5}) {
		t.Errorf("Samples(2020)[0] = %+v", s[0])
	}
	if s[1].Lon != 300 {
		t.Errorf("sample order not preserved: %+v", s)
	}
	if len(d.Samples(1950)) != 0 {
		t.Errorf("Samples(1950) = %v, want empty", d.Samples(1950))
	}
	if d.Samples(1800) != nil {
		t.Errorf("Samples(1800) = %v, want nil", d.Samples(1800))
	}
	first, last, ok := d.Range()
	if !ok || first != 1900 || last != 2020 {
		t.Errorf("Range = %d, %d, %v; want 1900, 2020, true", first, last, ok)
	}
}

func TestParseDatasetMalformed(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"array", `[1, 2]`},
		{"null", `null`},
		{"bad key", `{"abc": []}`},
		{"float key", `{"19.5": []}`},
		{"bad record", `{"1900": [{"lat": "north"}]}`},
		{"null record", `{"1900": [null]}`},
		{"empty record", `{"1900": [{}]}`},
		{"missing value", `{"1900": [{"lat": 1, "lon": 2}]}`},
		{"trailing", `{"1900": []} {}`},
		{"duplicate year", `{"1900": [], " 1900": []}`},
		{"truncated", `{"1900": [{"lat": 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDataset(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedDataset) {
				t.Errorf("err = %v, want ErrMalformedDataset", err)
			}
			if d != nil {
				t.Error("dataset should be nil on error")
			}
		})
	}
}

func TestParseDatasetEmptyObject(t *testing.T) {
	d, err := ParseDataset(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("ParseDataset: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len = %d, want 0", d.Len())
	}
	if _, _, ok := d.Range(); ok {
		t.Error("Range ok for empty dataset")
	}
}

func TestNewClimateDatasetCopies(t *testing.T) {
	src := map[int][]AnomalySample{2000: {{Value: 1}}}
	d := NewClimateDataset(src)
	src[2000][0].Value = 99
	src[2001] = nil
	if got := d.Samples(2000)[0].Value; got != 1 {
		t.Errorf("Value = %v, want 1", got)
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}

func TestNilDataset(t *testing.T) {
	var d *ClimateDataset
	if d.Samples(2000) != nil || d.Years() != nil || d.Len() != 0 {
		t.Error("nil dataset should behave as empty")
	}
	if _, _, ok := d.Range(); ok {
		t.Error("Range ok for nil dataset")
	}
}
