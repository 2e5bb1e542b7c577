package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Severity is the operator-assigned urgency tier of an incident.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityCritical Severity = "Critical"
)

// ParseSeverity maps a raw severity string onto the closed tier set.
// Unrecognized or empty values fall back to Low, matching the scorer's
// default branch.
func ParseSeverity(value string) Severity {
	switch Severity(value) {
	case SeverityMedium, SeverityCritical:
		return Severity(value)
	default:
		return SeverityLow
	}
}

// Status is the lifecycle stage of an incident's handling.
type Status string

const (
	StatusReported Status = "Reported"
	StatusVerified Status = "Verified"
	StatusAssigned Status = "Assigned"
	StatusResolved Status = "Resolved"
)

// ParseStatus maps a raw status string onto the closed lifecycle set.
// Unrecognized or empty values fall back to Reported. Resolved is the only
// value the scorer treats as terminal; the intermediate stages score alike.
func ParseStatus(value string) Status {
	switch Status(value) {
	case StatusVerified, StatusAssigned, StatusResolved:
		return Status(value)
	default:
		return StatusReported
	}
}

// IncidentType is the reported incident category. Type is used only for
// duplicate matching; scoring is type-agnostic.
type IncidentType string

const (
	TypeAccident IncidentType = "Accident"
	TypeMedical  IncidentType = "Medical"
	TypeFire     IncidentType = "Fire"
	TypeSmog     IncidentType = "Smog"
)

// ParseIncidentType maps a raw type string onto the closed category set.
// Unrecognized values become TypeAccident.
func ParseIncidentType(value string) IncidentType {
	switch IncidentType(value) {
	case TypeMedical, TypeFire, TypeSmog:
		return IncidentType(value)
	default:
		return TypeAccident
	}
}

// Geo is a WGS-84 latitude/longitude coordinate pair in decimal degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RawReport is the flat JSON shape produced by the citizen reporting
// clients. CreatedAt is left as raw JSON because upstream encodes it
// inconsistently (RFC3339 string, epoch number, or a seconds/nanoseconds
// wrapper object); see ParseTimestamp.
type RawReport struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Severity       string          `json:"severity"`
	Status         string          `json:"status"`
	CreatedAt      json.RawMessage `json:"createdAt"`
	Location       *Geo            `json:"location"`
	SensorVerified bool            `json:"sensorVerified"`
	Confidence     int             `json:"confidence"`
	CrowdVerifyCnt int             `json:"crowdVerifyCount"`
	CrowdVerifiers []string        `json:"crowdVerifiedBy"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Incident is a single reported emergency event after boundary
// normalization. Fields are plain value types; the triage functions never
// mutate an Incident they are given.
type Incident struct {
	ID             string       `json:"id"`
	Type           IncidentType `json:"type"`
	Severity       Severity     `json:"severity"`
	Status         Status       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	Location       *Geo         `json:"location,omitempty"`
	SensorVerified bool         `json:"sensor_verified"`

	// Verification state maintained by the crowd/sensor transitions.
	Confidence       int      `json:"confidence"`
	CrowdVerifyCount int      `json:"crowd_verify_count"`
	CrowdVerifiedBy  []string `json:"crowd_verified_by,omitempty"`
}

// PriorityResult is the scorer output: a clamped score and one reason per
// scoring factor, in evaluation order.
type PriorityResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// TriagedIncident is an incident with its derived triage fields attached.
// The incident itself is carried by value and left untouched.
type TriagedIncident struct {
	Incident

	PriorityScore int      `json:"priority_score"`
	Reasons       []string `json:"reasons"`
	IsDuplicate   bool     `json:"is_duplicate"`

	// Region enrichment fields.
	RegionLabel  string    `json:"region_label,omitempty"`
	RegionSource string    `json:"region_source,omitempty"` // "resolver", "static", "none"
	TriagedAt    time.Time `json:"triaged_at"`
}
