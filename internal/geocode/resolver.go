package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"astro-server/internal/cache"
	"astro-server/internal/shared/config"
	"astro-server/internal/shared/errors"
)

// Location is a resolved place: coordinates plus the UTC offset in
// force there.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UTCOffset string  `json:"utc_offset"`
}

// Resolver turns a place name into coordinates and a UTC offset. The
// engine itself never geocodes; the chart handlers resolve locations
// before invoking it.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*Location, error)
}

// HTTPResolver resolves against a Nominatim-style search endpoint and
// a TimezoneDB-style offset lookup.
type HTTPResolver struct {
	client *http.Client
	cache  *cache.Facade
	logger *slog.Logger
}

func NewHTTPResolver(cacheFacade *cache.Facade, logger *slog.Logger) *HTTPResolver {
	cfg := config.GlobalConfig.Geocoding
	return &HTTPResolver{
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cacheFacade,
		logger: logger.With("component", "geocode"),
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type timezoneResult struct {
	Status    string `json:"status"`
	GMTOffset int    `json:"gmtOffset"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, name string) (*Location, error) {
	if name == "" {
		return nil, errors.Validation("location name is required")
	}

	key := cache.Key("geocode", map[string]any{"name": name})
	var cached Location
	if r.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	loc, err := r.search(ctx, name)
	if err != nil {
		return nil, err
	}
	offset, err := r.utcOffset(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	loc.UTCOffset = offset

	r.cache.Put(ctx, key, loc, r.cache.GeocodeTTL())
	r.logger.Info("Location resolved", "name", name, "lat", loc.Latitude, "lon", loc.Longitude)
	return loc, nil
}

func (r *HTTPResolver) search(ctx context.Context, name string) (*Location, error) {
	cfg := config.GlobalConfig.Geocoding

	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []searchResult
	if err := r.getJSON(ctx, cfg.SearchURL+"?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.NotFoundf("no match for location %q", name)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, errors.WrapExternal("geocoder returned malformed latitude", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, errors.WrapExternal("geocoder returned malformed longitude", err)
	}

	return &Location{Name: results[0].DisplayName, Latitude: lat, Longitude: lon}, nil
}

func (r *HTTPResolver) utcOffset(ctx context.Context, lat, lon float64) (string, error) {
	cfg := config.GlobalConfig.Geocoding
	if cfg.TimezoneKey == "" {
		// no timezone provider configured: callers fall back to UTC
		return "", nil
	}

	params := url.Values{}
	params.Set("key", cfg.TimezoneKey)
	params.Set("format", "json")
	params.Set("by", "position")
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(lon, 'f', 6, 64))

	var result timezoneResult
	if err := r.getJSON(ctx, cfg.TimezoneURL+"?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if result.Status != "OK" {
		return "", errors.External("timezone lookup failed")
	}

	return FormatOffset(result.GMTOffset), nil
}

func (r *HTTPResolver) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.WrapInternal("failed to build geocoding request", err)
	}
	req.Header.Set("User-Agent", config.GlobalConfig.Geocoding.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.WrapExternal("geocoding service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.External(fmt.Sprintf("geocoding service returned status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WrapExternal("geocoding response is not valid JSON", err)
	}
	return nil
}

// FormatOffset renders an offset in seconds as +HH:MM or -HH:MM.
func FormatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
