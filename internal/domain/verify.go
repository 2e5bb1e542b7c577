package domain

import "time"

// Confidence adjustments applied by the verification transitions.
const (
	confidenceInitial     = 40
	confidenceCrowdBoost  = 10
	confidenceSensorBoost = 25

	confidenceMin = 0
	confidenceMax = 100
)

// NewIncident builds a freshly reported incident with system-controlled
// defaults: Reported status, initial confidence, no verification yet.
func NewIncident(id string, incidentType IncidentType, severity Severity, location *Geo, createdAt time.Time) Incident {
	return Incident{
		ID:         id,
		Type:       incidentType,
		Severity:   severity,
		Status:     StatusReported,
		CreatedAt:  createdAt,
		Location:   location,
		Confidence: confidenceInitial,
	}
}

// ApplyCrowdVerification records a citizen confirmation vote. Each voter
// counts once; a repeat vote returns the incident unchanged and false. The
// voter identity comes from the caller's session layer; the triage core
// holds no session state. A successful vote soft-escalates the incident to
// Verified and nudges confidence up.
func ApplyCrowdVerification(inc Incident, voterID string) (Incident, bool) {
	for _, v := range inc.CrowdVerifiedBy {
		if v == voterID {
			return inc, false
		}
	}

	verifiers := make([]string, 0, len(inc.CrowdVerifiedBy)+1)
	verifiers = append(verifiers, inc.CrowdVerifiedBy...)
	verifiers = append(verifiers, voterID)

	inc.CrowdVerifiedBy = verifiers
	inc.CrowdVerifyCount++
	inc.Status = StatusVerified
	inc.Confidence = clampConfidence(inc.Confidence + confidenceCrowdBoost)
	return inc, true
}

// ApplySensorVerification marks an incident as independently confirmed by
// an automated sensor, escalating it to Verified with a larger confidence
// boost than a single crowd vote.
func ApplySensorVerification(inc Incident) Incident {
	inc.SensorVerified = true
	inc.Status = StatusVerified
	inc.Confidence = clampConfidence(inc.Confidence + confidenceSensorBoost)
	return inc
}

// WithStatus returns a copy of the incident in the given lifecycle stage.
func WithStatus(inc Incident, status Status) Incident {
	inc.Status = status
	return inc
}

func clampConfidence(v int) int {
	if v < confidenceMin {
		return confidenceMin
	}
	if v > confidenceMax {
		return confidenceMax
	}
	return v
}
