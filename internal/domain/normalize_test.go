package domain_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

var testTarget = domain.Target{
	RegionCode: "US-FL-031",
	URL:        "https://dashboard.birdcast.info/region/US-FL-031",
}

func ptr[T any](v T) *T { return &v }

func TestNormalize_FullRecord(t *testing.T) {
	now := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)
	rec := domain.PartialRecord{
		domain.FieldRegionName:      "Duval County, Florida",
		domain.FieldTotalBirds:      "481,000",
		domain.FieldPeakBirds:       "21,700",
		domain.FieldFlightDirection: "SSW",
		domain.FieldFlightSpeed:     "21.5",
		domain.FieldFlightAltitude:  "1,200",
		domain.FieldMigrationStart:  "Fri, Oct 24, 2025, 6:45 PM EDT",
		domain.FieldMigrationEnd:    "Sat, Oct 25, 2025, 5:30 AM EDT",
		domain.FieldMigrationDate:   "Friday night, Oct 24",
	}

	obs, dropped := domain.Normalize(rec, testTarget, now)

	assert.Empty(t, dropped)
	want := domain.Observation{
		ScrapeTimestamp:   now,
		URL:               testTarget.URL,
		RegionCode:        testTarget.RegionCode,
		RegionName:        ptr("Duval County, Florida"),
		TotalBirds:        ptr(int64(481000)),
		PeakBirdsInFlight: ptr(int64(21700)),
		FlightDirection:   ptr("SSW"),
		FlightSpeedMPH:    ptr(21.5),
		FlightAltitudeFt:  ptr(1200.0),
		MigrationStart:    ptr("18:45"),
		MigrationEnd:      ptr("05:30"),
		MigrationDate:     ptr("2025-10-24"),
	}
	if diff := cmp.Diff(want, obs); diff != "" {
		t.Errorf("observation mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_EmptyRecordStillCarriesProvenance(t *testing.T) {
	now := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	obs, dropped := domain.Normalize(domain.PartialRecord{}, testTarget, now)

	assert.Empty(t, dropped)
	assert.Equal(t, now, obs.ScrapeTimestamp)
	assert.Equal(t, testTarget.URL, obs.URL)
	assert.Equal(t, testTarget.RegionCode, obs.RegionCode)
	assert.Nil(t, obs.TotalBirds)
	assert.Nil(t, obs.PeakBirdsInFlight)
	assert.Nil(t, obs.FlightDirection)
	assert.Nil(t, obs.FlightSpeedMPH)
	assert.Nil(t, obs.FlightAltitudeFt)
	assert.Nil(t, obs.MigrationStart)
	assert.Nil(t, obs.MigrationEnd)
	assert.Nil(t, obs.MigrationDate)
}

func TestNormalize_CoercionFailureDropsField(t *testing.T) {
	now := time.Now().UTC()
	rec := domain.PartialRecord{
		domain.FieldTotalBirds:  "lots",
		domain.FieldFlightSpeed: "fast",
		domain.FieldPeakBirds:   "2,100",
	}

	obs, dropped := domain.Normalize(rec, testTarget, now)

	assert.ElementsMatch(t, []string{domain.FieldTotalBirds, domain.FieldFlightSpeed}, dropped)
	assert.Nil(t, obs.TotalBirds)
	assert.Nil(t, obs.FlightSpeedMPH)
	require.NotNil(t, obs.PeakBirdsInFlight)
	assert.Equal(t, int64(2100), *obs.PeakBirdsInFlight)
}

func TestNormalize_BareClockTimesZeroPadded(t *testing.T) {
	rec := domain.PartialRecord{
		domain.FieldMigrationStart: "9:45",
		domain.FieldMigrationEnd:   "21:45",
	}

	obs, _ := domain.Normalize(rec, testTarget, time.Now().UTC())

	require.NotNil(t, obs.MigrationStart)
	require.NotNil(t, obs.MigrationEnd)
	assert.Equal(t, "09:45", *obs.MigrationStart)
	assert.Equal(t, "21:45", *obs.MigrationEnd)
}

func TestNormalize_UnparsableWindowKeptVerbatim(t *testing.T) {
	rec := domain.PartialRecord{
		domain.FieldMigrationStart: "shortly after sunset",
	}

	obs, dropped := domain.Normalize(rec, testTarget, time.Now().UTC())

	assert.Empty(t, dropped)
	require.NotNil(t, obs.MigrationStart)
	assert.Equal(t, "shortly after sunset", *obs.MigrationStart)
}

func TestNormalize_MigrationDate(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.PartialRecord
		now  time.Time
		want *string
	}{
		{
			name: "start bound date wins over prose",
			rec: domain.PartialRecord{
				domain.FieldMigrationStart: "Fri, Oct 24, 2025, 6:45 PM EDT",
				domain.FieldMigrationEnd:   "Sat, Oct 25, 2025, 5:30 AM EDT",
				domain.FieldMigrationDate:  "Thursday night, Oct 23",
			},
			now:  time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC),
			want: ptr("2025-10-24"),
		},
		{
			name: "prose date gets the scrape year",
			rec:  domain.PartialRecord{domain.FieldMigrationDate: "Friday night, Oct 24"},
			now:  time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC),
			want: ptr("2025-10-24"),
		},
		{
			name: "december night scraped in january belongs to last year",
			rec:  domain.PartialRecord{domain.FieldMigrationDate: "Wednesday night, Dec 31"},
			now:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			want: ptr("2025-12-31"),
		},
		{
			name: "unparsable prose kept verbatim",
			rec:  domain.PartialRecord{domain.FieldMigrationDate: "sometime last week"},
			now:  time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC),
			want: ptr("sometime last week"),
		},
		{
			name: "absent stays unknown",
			rec:  domain.PartialRecord{},
			now:  time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, _ := domain.Normalize(tt.rec, testTarget, tt.now)
			if tt.want == nil {
				assert.Nil(t, obs.MigrationDate)
				return
			}
			require.NotNil(t, obs.MigrationDate)
			assert.Equal(t, *tt.want, *obs.MigrationDate)
		})
	}
}

func TestObservation_CSVRowMatchesColumns(t *testing.T) {
	now := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)
	obs, _ := domain.Normalize(domain.PartialRecord{
		domain.FieldTotalBirds:  "15000",
		domain.FieldFlightSpeed: "21.5",
	}, testTarget, now)

	row := obs.CSVRow()

	require.Len(t, row, len(domain.Columns()))
	assert.Equal(t, "2025-10-25T12:00:00Z", row[0])
	assert.Equal(t, testTarget.URL, row[1])
	assert.Equal(t, testTarget.RegionCode, row[2])
	assert.Equal(t, "", row[3]) // unknown region_name renders empty
	assert.Equal(t, "15000", row[4])
	assert.Equal(t, "21.5", row[7])
}
