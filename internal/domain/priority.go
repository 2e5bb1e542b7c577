package domain

import (
	"math"
	"time"
)

// Scoring weights. The sensor term intentionally penalizes unconfirmed
// reports so that two otherwise identical incidents differ by exactly 70.
const (
	weightSeverityCritical = 120
	weightSeverityMedium   = 70
	weightSeverityLow      = 30

	weightStatusResolved   = -50
	weightStatusUnresolved = 40

	weightAgeFresh      = 25 // <= 5 minutes
	weightAgeEscalating = 40 // <= 15 minutes
	weightAgeDelayed    = 60 // <= 30 minutes
	weightAgeCritical   = 80 // > 30 minutes

	weightSensorVerified   = 60
	weightSensorUnverified = -10

	scoreMin = 0
	scoreMax = 1000
)

// CalculatePriorityWithReasons computes the urgency score for an incident
// from four weighted terms, in fixed order: severity, status, age, sensor
// verification. Each term contributes exactly one reason string, so the
// reasons list always has four entries and doubles as the score's
// explanation for operator display.
//
// Age is measured against the current clock, not a snapshot: the same
// unresolved incident scores higher on a later evaluation. That escalation
// counteracts the recency bias of a live feed.
func CalculatePriorityWithReasons(severity Severity, status Status, createdAt time.Time, sensorVerified bool) PriorityResult {
	score := 0.0
	reasons := make([]string, 0, 4)

	switch severity {
	case SeverityCritical:
		score += weightSeverityCritical
		reasons = append(reasons, "Critical severity")
	case SeverityMedium:
		score += weightSeverityMedium
		reasons = append(reasons, "Medium severity")
	default:
		score += weightSeverityLow
		reasons = append(reasons, "Low severity")
	}

	if status == StatusResolved {
		score += weightStatusResolved
		reasons = append(reasons, "Incident resolved")
	} else {
		score += weightStatusUnresolved
		reasons = append(reasons, "Incident unresolved")
	}

	minutesAgo := math.Max(0, clock.Now().Sub(createdAt).Minutes())
	switch {
	case minutesAgo <= 5:
		score += weightAgeFresh
		reasons = append(reasons, "Reported within last 5 minutes")
	case minutesAgo <= 15:
		score += weightAgeEscalating
		reasons = append(reasons, "Incident escalating with time")
	case minutesAgo <= 30:
		score += weightAgeDelayed
		reasons = append(reasons, "Delayed response risk")
	default:
		score += weightAgeCritical
		reasons = append(reasons, "Critical delay — immediate action required")
	}

	if sensorVerified {
		score += weightSensorVerified
		reasons = append(reasons, "Sensor verified signal")
	} else {
		score += weightSensorUnverified
		reasons = append(reasons, "Awaiting sensor confirmation")
	}

	clamped := math.Max(scoreMin, math.Min(math.Round(score), scoreMax))
	return PriorityResult{Score: int(clamped), Reasons: reasons}
}
