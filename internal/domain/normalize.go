package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nightBoundLayout matches the dashboard's window timestamps,
// e.g. "Fri, Oct 24, 2025, 6:00 PM EDT".
const nightBoundLayout = "Mon, Jan 2, 2006, 3:04 PM MST"

var clockTimeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// Normalize converts a partial record of raw strings into a typed
// Observation. Coercion failures substitute the unknown sentinel (nil)
// rather than erroring; the names of fields dropped this way are returned
// so the caller can log a precise warning. The observation always carries
// the scrape timestamp, URL, and region code, even when every metric is
// unknown.
func Normalize(rec PartialRecord, target Target, now time.Time) (Observation, []string) {
	n := normalizer{rec: rec}

	obs := Observation{
		ScrapeTimestamp: now,
		URL:             target.URL,
		RegionCode:      target.RegionCode,
	}

	obs.RegionName = n.str(FieldRegionName)
	obs.TotalBirds = n.count(FieldTotalBirds)
	obs.PeakBirdsInFlight = n.count(FieldPeakBirds)
	obs.FlightDirection = n.str(FieldFlightDirection)
	obs.FlightSpeedMPH = n.float(FieldFlightSpeed)
	obs.FlightAltitudeFt = n.float(FieldFlightAltitude)

	var startDate time.Time
	obs.MigrationStart, startDate = n.nightTime(FieldMigrationStart)
	obs.MigrationEnd, _ = n.nightTime(FieldMigrationEnd)
	obs.MigrationDate = n.migrationDate(startDate, now)

	return obs, n.dropped
}

type normalizer struct {
	rec     PartialRecord
	dropped []string
}

func (n *normalizer) raw(field string) (string, bool) {
	v, ok := n.rec[field]
	return v, ok && v != ""
}

func (n *normalizer) drop(field string) {
	n.dropped = append(n.dropped, field)
}

func (n *normalizer) str(field string) *string {
	v, ok := n.raw(field)
	if !ok {
		return nil
	}
	return &v
}

// count parses a comma-grouped non-negative integer, e.g. "481,000".
func (n *normalizer) count(field string) *int64 {
	raw, ok := n.raw(field)
	if !ok {
		return nil
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil || v < 0 {
		n.drop(field)
		return nil
	}
	return &v
}

func (n *normalizer) float(field string) *float64 {
	raw, ok := n.raw(field)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		n.drop(field)
		return nil
	}
	return &v
}

// nightTime reduces a window bound to the dashboard's local clock time in
// 24-hour "15:04" form. A raw value that parses neither as a full dashboard
// timestamp nor as a bare clock time is kept verbatim; partial data beats
// no data. The second return is the bound's calendar date when known.
func (n *normalizer) nightTime(field string) (*string, time.Time) {
	raw, ok := n.raw(field)
	if !ok {
		return nil, time.Time{}
	}

	if t, err := time.Parse(nightBoundLayout, raw); err == nil {
		v := t.Format("15:04")
		return &v, t
	}
	if clockTimeRe.MatchString(raw) {
		if t, err := time.Parse("15:04", raw); err == nil {
			v := t.Format("15:04")
			return &v, time.Time{}
		}
	}
	return &raw, time.Time{}
}

// migrationDate derives the ISO date of the migration night. The start
// bound's date is authoritative when it parsed; otherwise the prose date
// ("Friday night, Oct 24") is combined with a year inferred from the scrape
// time. Unparsable prose is kept verbatim.
func (n *normalizer) migrationDate(startDate time.Time, now time.Time) *string {
	if !startDate.IsZero() {
		v := startDate.Format("2006-01-02")
		return &v
	}

	raw, ok := n.raw(FieldMigrationDate)
	if !ok {
		return nil
	}

	// "Friday night, Oct 24" → "Oct 24"
	_, monthDay, found := strings.Cut(raw, " night, ")
	if !found {
		return &raw
	}
	md, err := time.Parse("Jan 2", monthDay)
	if err != nil {
		return &raw
	}

	year := now.Year()
	date := time.Date(year, md.Month(), md.Day(), 0, 0, 0, 0, time.UTC)
	// A dashboard date more than a day ahead of the scrape means the night
	// belongs to the previous calendar year (scrapes around New Year).
	if date.After(now.AddDate(0, 0, 1)) {
		date = date.AddDate(-1, 0, 0)
	}
	v := date.Format("2006-01-02")
	return &v
}
