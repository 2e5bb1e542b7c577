package domain

import "math"

// Duplicate matching thresholds. Distance is flat Euclidean in degrees,
// roughly 1 km at mid-latitudes. The heuristic flags likely re-reports for
// operator attention; it is not a geodesic measurement and never merges or
// suppresses anything.
const (
	duplicateWindowMinutes = 10
	duplicateRadiusDegrees = 0.01
)

// IsPotentialDuplicate reports whether candidate looks like a re-report of
// any incident in others: same type, created within 10 minutes, and closer
// than 0.01 degrees. Either side lacking a location never matches, and an
// entry sharing the candidate's ID is skipped so a caller passing the full
// set does not self-match. Returns on the first qualifying match.
func IsPotentialDuplicate(candidate Incident, others []Incident) bool {
	for i := range others {
		if others[i].ID == candidate.ID {
			continue
		}
		if matchesAsDuplicate(candidate, others[i]) {
			return true
		}
	}
	return false
}

func matchesAsDuplicate(a, b Incident) bool {
	if a.Location == nil || b.Location == nil {
		return false
	}
	if a.Type != b.Type {
		return false
	}

	minutesApart := math.Abs(a.CreatedAt.Sub(b.CreatedAt).Minutes())
	if minutesApart > duplicateWindowMinutes {
		return false
	}

	dx := a.Location.Lat - b.Location.Lat
	dy := a.Location.Lng - b.Location.Lng
	return math.Sqrt(dx*dx+dy*dy) < duplicateRadiusDegrees
}
