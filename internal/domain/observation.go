package domain

import (
	"strconv"
	"time"
)

// Target is one region to scrape: a BirdCast region code and the dashboard
// URL that serves it. Targets are supplied by the caller and never persisted.
type Target struct {
	RegionCode string
	URL        string
}

// Observation is one fetch-and-parse result for one region at one point in
// time. Metric fields are pointers so that an unlocatable field serializes
// as null rather than a zero that could be mistaken for a measurement.
// Struct field order defines both the JSON key order and the CSV column
// order; the two formats must stay in lockstep.
type Observation struct {
	ScrapeTimestamp   time.Time `json:"scrape_timestamp"`
	URL               string    `json:"url"`
	RegionCode        string    `json:"region_code"`
	RegionName        *string   `json:"region_name"`
	TotalBirds        *int64    `json:"total_birds"`
	PeakBirdsInFlight *int64    `json:"peak_birds_in_flight"`
	FlightDirection   *string   `json:"flight_direction"`
	FlightSpeedMPH    *float64  `json:"flight_speed_mph"`
	FlightAltitudeFt  *float64  `json:"flight_altitude_ft"`
	MigrationStart    *string   `json:"migration_start"`
	MigrationEnd      *string   `json:"migration_end"`
	MigrationDate     *string   `json:"migration_date"`
}

// Columns returns the CSV header in fixed order: the two provenance columns
// followed by region_code and the nine extracted fields.
func Columns() []string {
	return []string{
		"scrape_timestamp",
		"url",
		"region_code",
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
}

// CSVRow renders the observation as one CSV record matching Columns().
// Unknown fields become empty strings.
func (o Observation) CSVRow() []string {
	return []string{
		o.ScrapeTimestamp.Format(time.RFC3339),
		o.URL,
		o.RegionCode,
		strOrEmpty(o.RegionName),
		intOrEmpty(o.TotalBirds),
		intOrEmpty(o.PeakBirdsInFlight),
		strOrEmpty(o.FlightDirection),
		floatOrEmpty(o.FlightSpeedMPH),
		floatOrEmpty(o.FlightAltitudeFt),
		strOrEmpty(o.MigrationStart),
		strOrEmpty(o.MigrationEnd),
		strOrEmpty(o.MigrationDate),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrEmpty(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// RunSummary reports the outcome of one batch invocation. It is handed to
// the logging sink and printed by the CLI, never written to the data files.
type RunSummary struct {
	Attempted int
	Succeeded int
	Failed    int
	Duration  time.Duration
}
