// Command genmock generates deterministic mock citizen-report fixtures for
// the triage test suites. It uses the actual domain package to produce the
// triaged output, so fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -count 200 \
//	  -raw-out data/mock/incident_reports_raw.json \
//	  -triaged-out data/mock/incident_reports_triaged.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sentra-ops/incident-triage/internal/domain"
)

var baseTime = time.Date(2026, time.August, 30, 14, 0, 0, 0, time.UTC)

// metro anchors for scattering report locations. Matches the static region
// table so fixtures exercise every label.
var metros = []struct {
	name     string
	lat, lng float64
}{
	{"delhi", 28.61, 77.21},
	{"mumbai", 19.08, 72.88},
	{"bengaluru", 12.97, 77.59},
	{"chennai", 13.08, 80.27},
	{"kolkata", 22.57, 88.36},
	{"hyderabad", 17.39, 78.49},
	{"pune", 18.52, 73.86},
}

var (
	types      = []string{"Accident", "Medical", "Fire", "Smog"}
	severities = []string{"Low", "Medium", "Critical"}
	statuses   = []string{"Reported", "Reported", "Reported", "Verified", "Assigned", "Resolved"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 200, "number of reports to generate")
	seed := flag.Int64("seed", 42, "random seed")
	rawOut := flag.String("raw-out", "", "output path for raw report JSON fixture")
	triagedOut := flag.String("triaged-out", "", "output path for triaged JSON fixture")
	flag.Parse()

	if *rawOut == "" || *triagedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -triaged-out")
	}

	// Fix the clock for reproducible age scoring and TriagedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	rawReports := make([]map[string]any, 0, *count)
	incidents := make([]domain.Incident, 0, *count)

	for i := 0; i < *count; i++ {
		var report map[string]any
		if i%10 == 9 {
			report = makeNearDuplicate(rng, i, rawReports[i-1])
		} else {
			report = makeReport(rng, i)
		}
		rawReports = append(rawReports, report)

		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		inc, err := domain.ParseRawEvent(domain.RawEvent{Value: payload})
		if err != nil {
			return fmt.Errorf("parse report %d: %w", i, err)
		}
		incidents = append(incidents, inc)
	}

	// Run the actual triage over the whole set and label regions from the
	// static metro table.
	triaged := domain.BuildFeed(incidents, domain.FeedOptions{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for i := range triaged {
		triaged[i] = domain.EnrichWithRegion(context.Background(), triaged[i], nil, logger)
	}

	if err := writeJSON(*rawOut, rawReports); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s (%d reports)", *rawOut, len(rawReports))

	if err := writeJSON(*triagedOut, triaged); err != nil {
		return fmt.Errorf("writing triaged fixture: %w", err)
	}
	log.Printf("wrote triaged fixture: %s", *triagedOut)

	printStats(triaged)
	return nil
}

// makeReport builds one raw report. The timestamp encoding rotates through
// the three formats the clients actually send.
func makeReport(rng *rand.Rand, i int) map[string]any {
	metro := metros[rng.Intn(len(metros))]
	createdAt := baseTime.Add(-time.Duration(rng.Intn(45)) * time.Minute)

	report := map[string]any{
		"id":             fmt.Sprintf("rep-%04d", i),
		"type":           types[rng.Intn(len(types))],
		"severity":       severities[rng.Intn(len(severities))],
		"status":         statuses[rng.Intn(len(statuses))],
		"sensorVerified": rng.Intn(4) == 0,
		"location": map[string]float64{
			"lat": metro.lat + (rng.Float64()-0.5)*0.1,
			"lng": metro.lng + (rng.Float64()-0.5)*0.1,
		},
	}

	switch i % 3 {
	case 0:
		report["createdAt"] = createdAt.Format(time.RFC3339)
	case 1:
		report["createdAt"] = createdAt.UnixMilli()
	default:
		report["createdAt"] = map[string]int64{
			"seconds":     createdAt.Unix(),
			"nanoseconds": 0,
		}
	}

	return report
}

// makeNearDuplicate re-reports the previous incident: same type, a few
// minutes later, a few hundred meters away. These land inside the duplicate
// detector's time and distance thresholds.
func makeNearDuplicate(rng *rand.Rand, i int, prev map[string]any) map[string]any {
	encoded, _ := json.Marshal(prev["createdAt"])
	prevCreated := domain.ParseTimestamp(encoded)
	prevLoc := prev["location"].(map[string]float64)

	return map[string]any{
		"id":             fmt.Sprintf("rep-%04d", i),
		"type":           prev["type"],
		"severity":       severities[rng.Intn(len(severities))],
		"status":         "Reported",
		"sensorVerified": false,
		"createdAt":      prevCreated.Add(time.Duration(1+rng.Intn(5)) * time.Minute).Format(time.RFC3339),
		"location": map[string]float64{
			"lat": prevLoc["lat"] + (rng.Float64()-0.5)*0.005,
			"lng": prevLoc["lng"] + (rng.Float64()-0.5)*0.005,
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(triaged []domain.TriagedIncident) {
	typeCounts := map[domain.IncidentType]int{}
	regionCounts := map[string]int{}
	var duplicates, sensorVerified int
	var maxScore, minScore int

	for i := range triaged {
		t := &triaged[i]
		typeCounts[t.Type]++
		regionCounts[t.RegionLabel]++
		if t.IsDuplicate {
			duplicates++
		}
		if t.SensorVerified {
			sensorVerified++
		}
		if i == 0 || t.PriorityScore > maxScore {
			maxScore = t.PriorityScore
		}
		if i == 0 || t.PriorityScore < minScore {
			minScore = t.PriorityScore
		}
	}

	counts := domain.CountBySeverity(triaged)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(triaged))
	fmt.Printf("By severity: critical=%d, medium=%d, low=%d\n",
		counts.Critical, counts.Medium, counts.Low)
	fmt.Printf("By type: accident=%d, medical=%d, fire=%d, smog=%d\n",
		typeCounts[domain.TypeAccident], typeCounts[domain.TypeMedical],
		typeCounts[domain.TypeFire], typeCounts[domain.TypeSmog])
	fmt.Printf("Duplicates flagged: %d\n", duplicates)
	fmt.Printf("Sensor verified: %d\n", sensorVerified)
	fmt.Printf("Score range: %d..%d\n", minScore, maxScore)

	fmt.Println("\nBy region:")
	for region, c := range regionCounts {
		fmt.Printf("  %s: %d\n", region, c)
	}

	if len(triaged) > 0 {
		top := triaged[0]
		fmt.Printf("\nTop incident:\n")
		fmt.Printf("  ID: %s\n", top.ID)
		fmt.Printf("  Type: %s, Severity: %s, Status: %s\n", top.Type, top.Severity, top.Status)
		fmt.Printf("  Score: %d\n", top.PriorityScore)
		for _, r := range top.Reasons {
			fmt.Printf("  Reason: %s\n", r)
		}
	}
}
