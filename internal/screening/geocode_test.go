package screening

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeGeocoder struct {
	calls int
	hits  []Location
	err   error
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) ([]Location, error) {
	g.calls++
	return g.hits, g.err
}

func floatPtr(v float64) *float64 { return &v }

func TestResolveCoordinatesPassThroughSkipsGeocoder(t *testing.T) {
	g := &fakeGeocoder{}
	req := AssignmentRequest{
		Latitude:  floatPtr(-6.2),
		Longitude: floatPtr(106.8),
		Address:   "Jl. Sudirman No. 1, Jakarta",
	}
	lat, lon, used, err := resolveCoordinates(context.Background(), g, req)
	if err != nil {
		t.Fatal(err)
	}
	if used {
		t.Fatal("pass-through should not be marked as geocoded")
	}
	if lat != -6.2 || lon != 106.8 {
		t.Fatalf("coordinates changed: %f, %f", lat, lon)
	}
	if g.calls != 0 {
		t.Fatalf("geocoder was called %d times for a request with coordinates", g.calls)
	}
}

func TestResolveCoordinatesGeocodesWhenMissing(t *testing.T) {
	g := &fakeGeocoder{hits: []Location{{Lat: -6.2, Lng: 106.8}, {Lat: 1, Lng: 1}}}
	lat, lon, used, err := resolveCoordinates(context.Background(), g, AssignmentRequest{Address: "Jl. Thamrin, Jakarta"})
	if err != nil {
		t.Fatal(err)
	}
	if !used {
		t.Fatal("expected geocode to be used")
	}
	if lat != -6.2 || lon != 106.8 {
		t.Fatalf("expected first hit, got %f, %f", lat, lon)
	}
}

func TestResolveCoordinatesRejectsInvalidInlineValues(t *testing.T) {
	for _, tc := range []struct {
		name string
		lat  float64
		lon  float64
	}{
		{name: "lat out of range", lat: 95, lon: 106.8},
		{name: "lon out of range", lat: -6.2, lon: 200},
		{name: "nan", lat: math.NaN(), lon: 106.8},
		{name: "inf", lat: -6.2, lon: math.Inf(1)},
	} {
		g := &fakeGeocoder{hits: []Location{{Lat: -6.2, Lng: 106.8}}}
		req := AssignmentRequest{Latitude: floatPtr(tc.lat), Longitude: floatPtr(tc.lon), Address: "Jakarta"}
		_, _, used, err := resolveCoordinates(context.Background(), g, req)
		if err != nil {
			t.Fatalf("%s: fallback should have succeeded: %v", tc.name, err)
		}
		if !used {
			t.Fatalf("%s: invalid inline coordinates should fall back to geocoding", tc.name)
		}
	}
}

func TestResolveCoordinatesFailures(t *testing.T) {
	for _, tc := range []struct {
		name string
		req  AssignmentRequest
		g    *fakeGeocoder
	}{
		{name: "empty address", req: AssignmentRequest{Address: "   "}, g: &fakeGeocoder{}},
		{name: "zero results", req: AssignmentRequest{Address: "nowhere"}, g: &fakeGeocoder{}},
		{name: "provider error", req: AssignmentRequest{Address: "Jakarta"}, g: &fakeGeocoder{err: errors.New("boom")}},
	} {
		_, _, _, err := resolveCoordinates(context.Background(), tc.g, tc.req)
		if err == nil {
			t.Fatalf("%s: expected failure", tc.name)
		}
	}
}

func TestGoogleGeocoderParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Jl. Thamrin" {
			t.Fatalf("unexpected address param: %q", got)
		}
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":-6.19,"lng":106.82}}}]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder(GeocoderConfig{APIKey: "test", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	hits, err := g.Geocode(context.Background(), "Jl. Thamrin")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Lat != -6.19 || hits[0].Lng != 106.82 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestGoogleGeocoderZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	g, _ := NewGoogleGeocoder(GeocoderConfig{APIKey: "test", BaseURL: srv.URL})
	hits, err := g.Geocode(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
}

func TestGoogleGeocoderRequiresAPIKey(t *testing.T) {
	if _, err := NewGoogleGeocoder(GeocoderConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
