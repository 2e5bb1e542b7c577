package domain

import (
	"context"
	"log/slog"
)

// RegionResult contains the place data returned by a region resolver.
type RegionResult struct {
	Label      string
	Confidence float64 // 0.0-1.0 provider confidence score
}

// RegionResolver turns coordinates into a human-readable jurisdiction label
// for operator display.
type RegionResolver interface {
	ResolveRegion(ctx context.Context, lat, lng float64) (RegionResult, error)
}

// Region labels for incidents that cannot be resolved. Coordinates are
// never shown to operators raw.
const (
	regionUnknown  = "Unknown Region"
	regionFallback = "Regional Jurisdiction"
)

// metroRegion is a coarse bounding box for a known metropolitan area.
type metroRegion struct {
	label          string
	minLat, maxLat float64
	minLng, maxLng float64
}

// metroRegions covers the deployment's responder jurisdictions. Checked in
// order; first hit wins.
var metroRegions = []metroRegion{
	{"Delhi NCR", 28.4, 28.9, 76.8, 77.4},
	{"Mumbai Metropolitan", 18.8, 19.4, 72.7, 73.1},
	{"Bengaluru Urban", 12.8, 13.2, 77.4, 77.8},
	{"Chennai City", 12.9, 13.3, 80.1, 80.4},
	{"Kolkata City", 22.4, 22.7, 88.2, 88.5},
	{"Hyderabad Region", 17.2, 17.6, 78.2, 78.7},
	{"Pune City", 18.4, 18.7, 73.7, 74.0},
}

// EnrichWithRegion attaches a region label to a triaged incident. A nil
// resolver, resolver error, or empty result falls back to the static metro
// table so the feed always renders a label.
func EnrichWithRegion(ctx context.Context, t TriagedIncident, resolver RegionResolver, logger *slog.Logger) TriagedIncident {
	if t.Location == nil {
		t.RegionLabel = regionUnknown
		t.RegionSource = "none"
		return t
	}

	if resolver != nil {
		result, err := resolver.ResolveRegion(ctx, t.Location.Lat, t.Location.Lng)
		if err != nil {
			logger.Warn("region resolution failed",
				"incident_id", t.ID,
				"lat", t.Location.Lat,
				"lng", t.Location.Lng,
				"error", err,
			)
		} else if result.Label != "" {
			t.RegionLabel = result.Label
			t.RegionSource = "resolver"
			return t
		}
	}

	t.RegionLabel = staticRegionLabel(t.Location.Lat, t.Location.Lng)
	t.RegionSource = "static"
	return t
}

// staticRegionLabel matches coordinates against the metro bounding boxes.
func staticRegionLabel(lat, lng float64) string {
	for _, r := range metroRegions {
		if lat >= r.minLat && lat <= r.maxLat && lng >= r.minLng && lng <= r.maxLng {
			return r.label
		}
	}
	return regionFallback
}
