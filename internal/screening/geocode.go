package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleGeocodeBaseURL = "https://maps.googleapis.com"

// Location is one forward-geocoding hit. The adapter always uses the first.
type Location struct {
	Lat float64
	Lng float64
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Location, error)
}

type GeocoderConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// GoogleGeocoder resolves free-text addresses via the Google Maps geocoding
// API. One attempt per lookup; the pipeline treats any failure as terminal.
type GoogleGeocoder struct {
	cfg GeocoderConfig
}

func NewGoogleGeocoder(cfg GeocoderConfig) (*GoogleGeocoder, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("GOOGLE_MAPS_API_KEY not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = googleGeocodeBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &GoogleGeocoder{cfg: cfg}, nil
}

type geocodeAPIResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) ([]Location, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.cfg.APIKey)
	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/maps/api/geocode/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	res, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("geocode status code: %d", res.StatusCode)
	}

	var parsed geocodeAPIResponse
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if parsed.Status != "OK" {
		return nil, fmt.Errorf("geocode failed with status %s", parsed.Status)
	}
	out := make([]Location, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng})
	}
	return out, nil
}

// resolveCoordinates returns the request's own coordinates when both are
// present and valid, without touching the geocoder. Otherwise it forward
// geocodes the address and takes the first hit.
func resolveCoordinates(ctx context.Context, g Geocoder, req AssignmentRequest) (lat, lon float64, usedGeocode bool, err error) {
	if req.Latitude != nil && req.Longitude != nil && validLatitude(*req.Latitude) && validLongitude(*req.Longitude) {
		return *req.Latitude, *req.Longitude, false, nil
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return 0, 0, false, errors.New("no coordinates given and address is empty")
	}
	hits, err := g.Geocode(ctx, address)
	if err != nil {
		return 0, 0, false, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(hits) == 0 {
		return 0, 0, false, fmt.Errorf("address %q could not be resolved", address)
	}
	first := hits[0]
	if !validLatitude(first.Lat) || !validLongitude(first.Lng) {
		return 0, 0, false, fmt.Errorf("geocoder returned out-of-range coordinates (%f, %f)", first.Lat, first.Lng)
	}
	return first.Lat, first.Lng, true, nil
}

func validLatitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

func validLongitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}
