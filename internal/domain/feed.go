package domain

import (
	"math"
	"sort"
	"time"
)

// DuplicateMarkerReason is prepended to a flagged incident's reasons list
// during feed assembly. The detector itself never touches reasons; the
// concatenation happens here so scorer and detector stay independently
// testable.
const DuplicateMarkerReason = "Possible duplicate incident"

// FeedOptions controls the pre-triage filter applied when assembling an
// operational feed. Zero values disable the corresponding filter.
type FeedOptions struct {
	// Window drops incidents older than this relative to now. 0 keeps all.
	Window time.Duration
	// Type keeps only incidents of the given category when non-empty.
	Type IncidentType
	// Center and RadiusKm drop incidents farther than RadiusKm kilometers
	// (great-circle) from Center. Incidents without a location pass the
	// radius filter. RadiusKm <= 0 keeps all.
	Center   Geo
	RadiusKm float64
}

// SeverityCounts tallies feed entries per severity tier for the header
// counters of the operations view.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// BuildFeed assembles a prioritized feed: filter by options, score each
// incident, flag duplicates against the filtered set, prepend the duplicate
// marker where flagged, and sort by descending score. Input incidents are
// not mutated. The sort is stable, so equal scores keep arrival order.
func BuildFeed(incidents []Incident, opts FeedOptions) []TriagedIncident {
	now := clock.Now()

	filtered := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if keepInFeed(inc, opts, now) {
			filtered = append(filtered, inc)
		}
	}

	feed := make([]TriagedIncident, 0, len(filtered))
	for _, inc := range filtered {
		result := CalculatePriorityWithReasons(inc.Severity, inc.Status, inc.CreatedAt, inc.SensorVerified)
		dup := IsPotentialDuplicate(inc, filtered)

		reasons := result.Reasons
		if dup {
			reasons = append([]string{DuplicateMarkerReason}, reasons...)
		}

		feed = append(feed, TriagedIncident{
			Incident:      inc,
			PriorityScore: result.Score,
			Reasons:       reasons,
			IsDuplicate:   dup,
			TriagedAt:     now,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].PriorityScore > feed[j].PriorityScore
	})
	return feed
}

// CountBySeverity tallies a feed per severity tier.
func CountBySeverity(feed []TriagedIncident) SeverityCounts {
	var counts SeverityCounts
	for i := range feed {
		switch feed[i].Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityMedium:
			counts.Medium++
		default:
			counts.Low++
		}
	}
	return counts
}

func keepInFeed(inc Incident, opts FeedOptions, now time.Time) bool {
	if opts.Type != "" && inc.Type != opts.Type {
		return false
	}
	if opts.Window > 0 && now.Sub(inc.CreatedAt) > opts.Window {
		return false
	}
	if opts.RadiusKm > 0 && inc.Location != nil {
		if haversineKm(opts.Center.Lat, opts.Center.Lng, inc.Location.Lat, inc.Location.Lng) > opts.RadiusKm {
			return false
		}
	}
	return true
}

// haversineKm is the great-circle distance in kilometers. Unlike the dedup
// heuristic this filter is a real distance: responder coverage radii are
// expressed in kilometers, not degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
