package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// firestoreTimestamp mirrors the {seconds, nanoseconds} wrapper object that
// the hosted document store serializes timestamps as.
type firestoreTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// epochMillisThreshold separates epoch-seconds from epoch-milliseconds
// payloads. Values at or above it (~Sep 2001 in millis, year 33658 in
// seconds) are treated as milliseconds.
const epochMillisThreshold = 1e12

// ParseTimestamp normalizes the timestamp encodings seen on the wire into a
// single instant. Accepted shapes: RFC3339 string, epoch-seconds or
// epoch-milliseconds number (integer or fractional), and the
// {seconds, nanoseconds} wrapper object. Missing or unparseable values
// degrade to now rather than failing, so a malformed report still enters
// triage with zero age.
func ParseTimestamp(raw json.RawMessage) time.Time {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return clock.Now()
	}

	var wrapper firestoreTimestamp
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Seconds != 0 {
		return time.Unix(wrapper.Seconds, wrapper.Nanoseconds).UTC()
	}

	var epoch float64
	if err := json.Unmarshal(raw, &epoch); err == nil && epoch > 0 {
		if epoch >= epochMillisThreshold {
			return time.UnixMilli(int64(epoch)).UTC()
		}
		secs := int64(epoch)
		nanos := int64((epoch - float64(secs)) * float64(time.Second))
		return time.Unix(secs, nanos).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}

	return clock.Now()
}

// ParseRawEvent deserializes a raw report message into a normalized
// Incident. The JSON itself must be well-formed; individual fields degrade
// per the triage contract (enum defaults, timestamp-to-now, absent
// location).
func ParseRawEvent(raw RawEvent) (Incident, error) {
	var rec RawReport
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Incident{}, fmt.Errorf("parse raw report: %w", err)
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		// Reports arriving without a document ID still need a stable
		// identity for dedup self-exclusion and sink keying.
		id = uuid.NewString()
	}

	return Incident{
		ID:               id,
		Type:             ParseIncidentType(rec.Type),
		Severity:         ParseSeverity(rec.Severity),
		Status:           ParseStatus(rec.Status),
		CreatedAt:        ParseTimestamp(rec.CreatedAt),
		Location:         rec.Location,
		SensorVerified:   rec.SensorVerified,
		Confidence:       rec.Confidence,
		CrowdVerifyCount: rec.CrowdVerifyCnt,
		CrowdVerifiedBy:  rec.CrowdVerifiers,
	}, nil
}
