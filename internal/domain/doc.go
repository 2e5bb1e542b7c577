// Package domain models citizen-reported emergency incidents and the triage
// pipeline that prioritizes them for responders.
//
// # Data Source
//
// Incident reports originate from the citizen-facing reporting clients,
// which publish each report as flat JSON to the source topic. Reports carry
// a category (Accident, Medical, Fire, Smog), an operator severity tier
// (Low, Medium, Critical), a lifecycle status (Reported, Verified,
// Assigned, Resolved), an optional lat/lng location, and a sensor
// verification flag.
//
// # Timestamp Encodings
//
// Client and storage revisions have serialized createdAt three ways:
//
//	RFC3339 string:  "2026-08-30T14:05:00Z"
//	Epoch number:    1788098700 (seconds) or 1788098700000 (millis;
//	                 values >= 1e12 are assumed to be milliseconds)
//	Wrapper object:  {"seconds": 1788098700, "nanoseconds": 0}
//
// [ParseTimestamp] normalizes all of these to a single UTC instant at the
// ingest boundary. Missing or unparseable values become "now", so a
// malformed report enters triage with zero age instead of failing.
//
// # Priority Scoring
//
// [CalculatePriorityWithReasons] sums four weighted terms in fixed order,
// each contributing one reason string:
//
//	Severity: Critical +120 | Medium +70 | Low (or unrecognized) +30
//	Status:   Resolved -50 | anything else +40
//	Age:      <=5m +25 | <=15m +40 | <=30m +60 | >30m +80
//	Sensor:   verified +60 | unverified -10
//
// The sum is rounded and clamped to [0, 1000]. Age contribution grows with
// elapsed time so that older unresolved reports surface more aggressively,
// counteracting the recency bias of a live feed. The age term reads the
// package clock; tests freeze it via [SetClock].
//
// # Duplicate Detection
//
// [IsPotentialDuplicate] flags a report as a likely re-report of the same
// real-world event when another report has the same type, was created
// within 10 minutes, and lies closer than 0.01 degrees in flat Euclidean
// distance (roughly 1 km at mid-latitudes). The flat-plane distance is a
// deliberate approximation: this is a coarse same-event heuristic, not a
// navigational measurement. Flagging is advisory only; nothing is merged,
// deleted, or suppressed.
//
// # Verification
//
// Crowd votes ([ApplyCrowdVerification]) and sensor confirmations
// ([ApplySensorVerification]) soft-escalate an incident to Verified and
// adjust its confidence value (initial 40, crowd +10, sensor +25, clamped
// to [0, 100]). Each voter counts once; the caller supplies the voter
// identity, since the core holds no session state.
package domain
