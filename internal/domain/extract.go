package domain

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field names for the nine extracted dashboard fields. These double as the
// CSV column names and JSON object keys.
const (
	FieldRegionName      = "region_name"
	FieldTotalBirds      = "total_birds"
	FieldPeakBirds       = "peak_birds_in_flight"
	FieldFlightDirection = "flight_direction"
	FieldFlightSpeed     = "flight_speed_mph"
	FieldFlightAltitude  = "flight_altitude_ft"
	FieldMigrationStart  = "migration_start"
	FieldMigrationEnd    = "migration_end"
	FieldMigrationDate   = "migration_date"
)

// MetricFields lists the nine extracted fields in output order.
var MetricFields = []string{
	FieldRegionName,
	FieldTotalBirds,
	FieldPeakBirds,
	FieldFlightDirection,
	FieldFlightSpeed,
	FieldFlightAltitude,
	FieldMigrationStart,
	FieldMigrationEnd,
	FieldMigrationDate,
}

// PartialRecord holds the raw extracted strings, keyed by field name.
// Fields the extractors could not locate are simply absent.
type PartialRecord map[string]string

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// regionNameRe captures the county name that follows the "Migration
	// Dashboard" heading, up to the "Search" control in the nav.
	regionNameRe = regexp.MustCompile(`Migration Dashboard\s+([A-Za-z\s,]+?)(?:\s+Search|$)`)

	// grouped counts: "481,000" or "15000".
	totalBirdsRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,?\d{3})*)\s+Birds crossed.*?last night`)
	peakBirdsRe  = regexp.MustCompile(`(?i)Peak of (\d{1,3}(?:,?\d{3})*) birds in flight`)

	directionRe = regexp.MustCompile(`flying ([NSEW]{1,3})\b`)
	speedRe     = regexp.MustCompile(`at (\d+(?:\.\d+)?) mph`)
	altitudeRe  = regexp.MustCompile(`at (\d{1,3}(?:,?\d{3})*(?:\.\d+)?) feet`)

	// nightBoundRe matches the dashboard's full window timestamps, e.g.
	// "Fri, Oct 24, 2025, 6:00 PM EDT". The first occurrence on the page is
	// the start of the migration night, the second is the end.
	nightBoundRe = regexp.MustCompile(`[A-Za-z]{3}, [A-Za-z]{3} \d{1,2}, \d{4}, \d{1,2}:\d{2} [AP]M [A-Z]{2,4}`)

	// migrationDateRe matches the prose date, e.g. "Friday night, Oct 24".
	migrationDateRe = regexp.MustCompile(`[A-Za-z]+ night, [A-Za-z]+ \d{1,2}`)
)

// fieldExtractor is one independent capability check: find one field's raw
// string in the flattened page text.
type fieldExtractor struct {
	field string
	find  func(text string) (string, bool)
}

var fieldExtractors = []fieldExtractor{
	{FieldRegionName, findRegionName},
	{FieldTotalBirds, matchGroup(totalBirdsRe)},
	{FieldPeakBirds, matchGroup(peakBirdsRe)},
	{FieldFlightDirection, matchGroup(directionRe)},
	{FieldFlightSpeed, matchGroup(speedRe)},
	{FieldFlightAltitude, matchGroup(altitudeRe)},
	{FieldMigrationStart, nightBound(0)},
	{FieldMigrationEnd, nightBound(1)},
	{FieldMigrationDate, matchWhole(migrationDateRe)},
}

// Extract scans raw page content for each of the nine dashboard fields.
// Fields are extracted independently: a field that cannot be located is
// reported in the returned missing list and never blocks the others.
// Extract does not fail on malformed content; garbage in yields an empty
// record with all nine fields missing.
func Extract(content string) (PartialRecord, []string) {
	text := Flatten(content)

	rec := make(PartialRecord, len(fieldExtractors))
	var missing []string
	for _, ex := range fieldExtractors {
		value, ok := ex.find(text)
		if !ok {
			missing = append(missing, ex.field)
			continue
		}
		rec[ex.field] = value
	}
	return rec, missing
}

// Flatten reduces HTML to its visible text with runs of whitespace collapsed
// to single spaces, so the extraction patterns can span markup boundaries.
// Content that does not parse as HTML is matched as-is.
func Flatten(content string) string {
	text := content
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		text = doc.Text()
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// findRegionName captures the county name from the dashboard heading. The
// page title repeats the "Migration Dashboard" phrase ahead of the heading,
// so any copies that leak into the capture are stripped.
func findRegionName(text string) (string, bool) {
	m := regionNameRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	for strings.HasPrefix(v, "Migration Dashboard") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "Migration Dashboard"))
	}
	return v, v != ""
}

func matchGroup(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		return v, v != ""
	}
}

func matchWhole(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		v := re.FindString(text)
		return v, v != ""
	}
}

// nightBound returns the i-th window timestamp on the page. Both bounds must
// be present for either to count as found; a lone timestamp is ambiguous.
func nightBound(i int) func(string) (string, bool) {
	return func(text string) (string, bool) {
		bounds := nightBoundRe.FindAllString(text, 2)
		if len(bounds) < 2 {
			return "", false
		}
		return bounds[i], true
	}
}
