// Package domain models BirdCast migration dashboard observations.
//
// # Data Source
//
// Observations come from the public BirdCast migration dashboard at
// https://dashboard.birdcast.info/region/<code>, one page per US county
// (e.g. US-FL-031 for Duval County, Florida). The dashboard is a rendered
// web page, not an API: the collector fetches the HTML, flattens it to
// text, and pattern-matches the migration figures out of the prose.
//
// # Dashboard Conventions
//
// The page phrases its figures in running text, which the extractors key on:
//
//	"481,000 Birds crossed <county> last night"   → total_birds
//	"Peak of 21,700 birds in flight"              → peak_birds_in_flight
//	"flying SSW"                                  → flight_direction
//	"at 21 mph"                                   → flight_speed_mph
//	"at 850 feet"                                 → flight_altitude_ft
//	"Fri, Oct 24, 2025, 6:00 PM EDT"              → migration window bounds;
//	   the first such timestamp on the page is the start of the migration
//	   night, the second is the end.
//	"Friday night, Oct 24"                        → migration_date fallback
//
// Counts use comma grouping. Compass directions are 1-3 uppercase letters
// (N, SSW, ESE, ...). Any figure can be absent when a county has no recent
// radar data; extraction treats each field independently and reports the
// ones it could not locate.
//
// # Unknown Values
//
// A field that could not be extracted or coerced is carried as a nil
// pointer, which serializes to null in JSON and an empty string in CSV.
// An observation with every metric unknown is still a valid observation:
// the scrape timestamp, URL, and region code are always populated.
//
// # Normalized Forms
//
// Migration window bounds are reduced to the dashboard's local clock time
// in 24-hour "15:04" form ("9:45 PM EDT" → "21:45"); no timezone conversion
// is applied because the value describes a time of night at the county, not
// an instant. The migration date is the ISO calendar date of the evening the
// window opened, taken from the start timestamp when it parses and otherwise
// inferred from the "Friday night, Oct 24" text and the scrape time.
package domain
