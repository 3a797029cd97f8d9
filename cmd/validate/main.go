// Command validate checks a raw readings fixture against the normalizer's
// guarantees: coordinates are complete and valid or absent, every metric is
// finite and in range or absent, rows without a reading carry the unknown
// level, and every record has a level. With -normalized it also compares
// the fixture's normalized output against a fresh run.
//
// Usage:
//
//	go run ./cmd/validate -readings data/mock/readings.json -normalized data/mock/normalized.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
)

// fixtureTime matches genmock so ProcessedAt values line up.
var fixtureTime = time.Date(2024, time.August, 15, 10, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	readingsPath := flag.String("readings", "", "path to raw readings JSON fixture")
	normalizedPath := flag.String("normalized", "", "optional path to normalized records JSON fixture")
	flag.Parse()

	if *readingsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*readingsPath, *normalizedPath))
}

func run(readingsPath, normalizedPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	fmt.Println("=== Normalizer Invariant Validation ===")
	fmt.Println()

	data, err := os.ReadFile(readingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read readings: %v\n", err)
		return 1
	}
	raws, err := domain.DecodeRawRecords(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	records := make([]domain.Record, len(raws))
	for i, raw := range raws {
		records[i] = *domain.Normalize(raw)
	}

	phases := []*phase{
		validateCoordinates(raws, records),
		validateMetricRanges(records),
		validateNoReading(records),
		validateLevels(records),
	}

	if normalizedPath != "" {
		expected, err := loadRecords(normalizedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load normalized: %v\n", err)
			return 1
		}
		phases = append(phases, compareFixture(records, expected))
	}

	return report(phases, len(raws))
}

func report(phases []*phase, total int) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Readings: %d\n", total)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadRecords(path string) ([]domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// validateCoordinates checks that coordinates are either nil or valid, and
// that a raw row with a valid pair keeps it.
func validateCoordinates(raws []domain.RawRecord, records []domain.Record) *phase {
	p := &phase{name: "Phase 1: Coordinate policy"}
	for i, rec := range records {
		lat, okLat := raws[i].Float("latitude")
		lng, okLng := raws[i].Float("longitude")
		rawValid := okLat && okLng && domain.ValidCoordinates(lat, lng)

		switch {
		case rec.Coordinates != nil && !domain.ValidCoordinates(rec.Coordinates.Lat, rec.Coordinates.Lng):
			p.errorf("record %d (%s): coordinates out of bounds: %+v", i, rec.ID, *rec.Coordinates)
		case rec.Coordinates != nil && !rawValid:
			p.errorf("record %d (%s): coordinates invented from incomplete input", i, rec.ID)
		case rec.Coordinates == nil && rawValid:
			p.errorf("record %d (%s): valid coordinates dropped", i, rec.ID)
		}
	}
	return p
}

func validateMetricRanges(records []domain.Record) *phase {
	p := &phase{name: "Phase 2: Metric ranges"}
	for i, rec := range records {
		for name, v := range rec.Metrics {
			if v == nil {
				continue
			}
			if !domain.InValidRange(name, *v) {
				p.errorf("record %d (%s): %s=%v out of range", i, rec.ID, name, *v)
			}
		}
	}
	return p
}

func validateNoReading(records []domain.Record) *phase {
	p := &phase{name: "Phase 3: No-reading rows"}
	count := 0
	for i, rec := range records {
		if !rec.NoReading {
			continue
		}
		count++
		if rec.Level.Code != domain.UnknownLevel.Code {
			p.errorf("record %d (%s): no reading but level %q", i, rec.ID, rec.Level.Code)
		}
	}
	fmt.Printf("  no-reading rows: %d\n", count)
	return p
}

func validateLevels(records []domain.Record) *phase {
	p := &phase{name: "Phase 4: Level totality"}
	for i, rec := range records {
		if rec.Level.Code == "" {
			p.errorf("record %d (%s): missing level", i, rec.ID)
		}
		if rec.Kind == domain.KindStation && rec.Level.Code != domain.StationStatusInfo(rec.Status).Code {
			p.errorf("record %d (%s): station level %q does not match status %q", i, rec.ID, rec.Level.Code, rec.Status)
		}
	}
	return p
}

// compareFixture diffs fresh normalizer output against a stored fixture.
func compareFixture(got, want []domain.Record) *phase {
	p := &phase{name: "Phase 5: Fixture parity"}
	if len(got) != len(want) {
		p.errorf("record count: got %d, fixture has %d", len(got), len(want))
		return p
	}
	for i := range got {
		if diff := cmp.Diff(want[i], got[i]); diff != "" {
			p.errorf("record %d (%s) differs (-fixture +fresh):\n%s", i, got[i].ID, diff)
		}
	}
	return p
}
