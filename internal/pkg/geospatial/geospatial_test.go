package geospatial_test

import (
	"math"
	"testing"

	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

func TestUTMZone_Boundaries(t *testing.T) {
	cases := map[float64]int{
		-180:     1,
		-174.01:  1,
		-174:     2,
		0:        31,
		-0.0001:  30,
		-34.9:    25,
		-46.7:    23,
		179.9999: 60,
		180:      1, // wraps
	}
	for lon, want := range cases {
		if got := geospatial.UTMZone(lon); got != want {
			t.Errorf("UTMZone(%v) = %d, want %d", lon, got, want)
		}
	}
}

func TestUTMZoneCentralMeridian(t *testing.T) {
	if got := geospatial.UTMZoneCentralMeridian(31); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
	if got := geospatial.UTMZoneCentralMeridian(25); got != -33 {
		t.Errorf("expected -33, got %v", got)
	}
}

func TestAzimuth_Cardinal(t *testing.T) {
	cases := []struct {
		name     string
		lon, lat float64
		want     float64
	}{
		{"north", 0, 1, 0},
		{"east", 1, 0, 90},
		{"south", 0, -1, 180},
		{"west", -1, 0, 270},
		{"north-east", 1, 1, 45},
		{"north-west", -1, 1, 315},
		{"coincident", 0, 0, 0},
	}
	for _, tc := range cases {
		got := geospatial.Azimuth(tc.lon, tc.lat, 0, 0)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestAzimuth_Range(t *testing.T) {
	for lon := -2.0; lon <= 2.0; lon += 0.25 {
		for lat := -2.0; lat <= 2.0; lat += 0.25 {
			az := geospatial.Azimuth(lon, lat, 0.1, -0.3)
			if az < 0 || az >= 360 {
				t.Fatalf("azimuth %v out of range for (%v, %v)", az, lon, lat)
			}
		}
	}
}

func TestForwardAngle(t *testing.T) {
	if got := geospatial.ForwardAngle(350, 10); math.Abs(got-20) > 1e-9 {
		t.Errorf("expected 20, got %v", got)
	}
	if got := geospatial.ForwardAngle(10, 350); math.Abs(got-340) > 1e-9 {
		t.Errorf("expected 340, got %v", got)
	}
	if got := geospatial.ForwardAngle(90, 90); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestToSexagesimal(t *testing.T) {
	cases := map[float64]string{
		0:      `00° 00' 0.00000"`,
		1.5:    `01° 30' 0.00000"`,
		-8.25:  `-08° 15' 0.00000"`,
		-0.5:   `-00° 30' 0.00000"`,
		123.75: `123° 45' 0.00000"`,
	}
	for in, want := range cases {
		if got := geospatial.ToSexagesimal(in); got != want {
			t.Errorf("ToSexagesimal(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestToSexagesimal_Seconds(t *testing.T) {
	// 3° 19' 40.31121" = 3.3278642250
	got := geospatial.ToSexagesimal(-3.327864225)
	if got != `-03° 19' 40.31121"` {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestToSexagesimal_Carry(t *testing.T) {
	// -34.9 is stored as -34.89999999999999857891452847979962825775146484375
	if got := geospatial.ToSexagesimal(-34.9); got != `-34° 54' 0.00000"` {
		t.Errorf("unexpected rendering %q", got)
	}
	if got := geospatial.ToSexagesimal(12.9999999999); got != `13° 00' 0.00000"` {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestSexagesimalRoundTrip(t *testing.T) {
	values := []float64{0, 1e-6, -1e-6, -3.327864225, -8.0123456, -34.9876543, 45.5, -179.99999, 89.123456789}
	for _, v := range values {
		s := geospatial.ToSexagesimal(v)
		back, err := geospatial.ParseSexagesimal(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if math.Abs(back-v) > 1e-5 {
			t.Errorf("round trip %v -> %q -> %v", v, s, back)
		}
	}
}

func TestParseSexagesimal_Errors(t *testing.T) {
	for _, in := range []string{"", "abc", `10° 75' 0"`, `1° 2' 3" 4`} {
		if _, err := geospatial.ParseSexagesimal(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParseSexagesimal_CommaDecimal(t *testing.T) {
	got, err := geospatial.ParseSexagesimal(`-03° 19' 40,31121"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got+3.327864225) > 1e-8 {
		t.Errorf("expected -3.327864225, got %v", got)
	}
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{1.5, 0, 2},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{0.5, 0, 1},
		{1234.56789, 3, 1234.568},
		{9123456.7894, 3, 9123456.789},
		{-8.123456, 5, -8.12346},
		{-34.876543, 5, -34.87654},
	}
	for _, tc := range cases {
		if got := geospatial.Round(tc.v, tc.places); got != tc.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tc.v, tc.places, got, tc.want)
		}
	}
}

func TestHaversine(t *testing.T) {
	// One degree of latitude on the mean sphere is ~111.195 km.
	d := geospatial.Haversine(0, 0, 1, 0)
	if math.Abs(d-111195) > 5 {
		t.Errorf("expected ~111195m, got %v", d)
	}
	if geospatial.Haversine(-8, -35, -8, -35) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestRingLength(t *testing.T) {
	lats := []float64{0, 1, 1, 0}
	lons := []float64{0, 0, 1, 1}
	got := geospatial.RingLength(lats, lons)
	side := geospatial.Haversine(0, 0, 1, 0)
	if got < 3.9*side || got > 4.1*side {
		t.Errorf("unexpected ring length %v (side %v)", got, side)
	}
	if geospatial.RingLength(lats[:1], lons[:1]) != 0 {
		t.Error("single point ring has no length")
	}
}

func TestExtent(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.Extent([]float64{-8, -7.9, -8.1}, []float64{-35, -34.8, -34.9})
	if minLat != -8.1 || maxLat != -7.9 || minLon != -35 || maxLon != -34.8 {
		t.Errorf("unexpected extent %v %v %v %v", minLat, minLon, maxLat, maxLon)
	}
}
