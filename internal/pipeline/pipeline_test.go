package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidjcox/birdcast-collector/internal/domain"
	"github.com/davidjcox/birdcast-collector/internal/observability"
	"github.com/davidjcox/birdcast-collector/internal/pipeline"
)

const goodPage = `<html><body>
<h1>Migration Dashboard</h1><h2>Duval County, Florida</h2><nav>Search</nav>
<p>481,000 Birds crossed Duval County last night</p>
<p>Peak of 21,700 birds in flight, flying SSW at 21 mph at 1,200 feet</p>
<p>Friday night, Oct 24</p>
<p>Fri, Oct 24, 2025, 6:45 PM EDT to Sat, Oct 25, 2025, 5:30 AM EDT</p>
</body></html>`

// --- mocks ---

type mockFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return "", err
	}
	return m.pages[url], nil
}

type mockAppender struct {
	appended []domain.Observation
	err      error
}

func (m *mockAppender) Append(obs domain.Observation) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, obs)
	return nil
}

type mockPublisher struct {
	published []domain.Observation
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, obs domain.Observation) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, obs)
	return nil
}

func target(region string) domain.Target {
	return domain.Target{
		RegionCode: region,
		URL:        "https://dashboard.birdcast.info/region/" + region,
	}
}

func newRunner(f pipeline.Fetcher, a pipeline.Appender, p pipeline.Publisher) *pipeline.Runner {
	return pipeline.New(f, a, p, slog.Default(), observability.NewMetricsForTesting(), clockwork.NewRealClock(), 0)
}

// --- tests ---

func TestRun_HappyPath(t *testing.T) {
	t1, t2 := target("US-FL-031"), target("US-CO-013")
	fetcher := &mockFetcher{pages: map[string]string{t1.URL: goodPage, t2.URL: goodPage}}
	appender := &mockAppender{}
	runner := newRunner(fetcher, appender, nil)

	summary := runner.Run(context.Background(), []domain.Target{t1, t2})

	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, appender.appended, 2)
	assert.Equal(t, "US-FL-031", appender.appended[0].RegionCode)
	assert.Equal(t, "US-CO-013", appender.appended[1].RegionCode)
	assert.NoError(t, runner.CheckReadiness(context.Background()))
}

func TestRun_FetchFailureDoesNotAbortBatch(t *testing.T) {
	bad, good := target("US-NJ-013"), target("US-FL-031")
	fetcher := &mockFetcher{
		pages: map[string]string{good.URL: goodPage},
		errs:  map[string]error{bad.URL: &domain.FetchError{URL: bad.URL, Attempts: 4, Err: errors.New("connection refused")}},
	}
	appender := &mockAppender{}
	runner := newRunner(fetcher, appender, nil)

	summary := runner.Run(context.Background(), []domain.Target{bad, good})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	// no observation was appended for the failed fetch
	require.Len(t, appender.appended, 1)
	assert.Equal(t, good.RegionCode, appender.appended[0].RegionCode)
	// both targets were attempted exactly once
	assert.Equal(t, []string{bad.URL, good.URL}, fetcher.calls)
}

func TestRun_AppendFailureMarksTargetFailed(t *testing.T) {
	tg := target("US-FL-031")
	fetcher := &mockFetcher{pages: map[string]string{tg.URL: goodPage}}
	appender := &mockAppender{err: &domain.AppendError{Format: "json", Path: "x.json", Err: errors.New("disk full")}}
	runner := newRunner(fetcher, appender, nil)

	summary := runner.Run(context.Background(), []domain.Target{tg})

	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestRun_EmptyExtractionStillAppends(t *testing.T) {
	tg := target("US-AL-081")
	fetcher := &mockFetcher{pages: map[string]string{tg.URL: "<html><body>no radar data</body></html>"}}
	appender := &mockAppender{}
	runner := newRunner(fetcher, appender, nil)

	summary := runner.Run(context.Background(), []domain.Target{tg})

	// a failed-extraction row is still recorded, but the target does not
	// count as a success
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, appender.appended, 1)
	obs := appender.appended[0]
	assert.Equal(t, tg.URL, obs.URL)
	assert.False(t, obs.ScrapeTimestamp.IsZero())
	assert.Nil(t, obs.TotalBirds)
}

func TestRun_PublishFailureIsNotATargetFailure(t *testing.T) {
	tg := target("US-FL-031")
	fetcher := &mockFetcher{pages: map[string]string{tg.URL: goodPage}}
	appender := &mockAppender{}
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	runner := newRunner(fetcher, appender, publisher)

	summary := runner.Run(context.Background(), []domain.Target{tg})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Len(t, appender.appended, 1)
	assert.Empty(t, publisher.published)
}

func TestRun_PublishesAfterAppend(t *testing.T) {
	tg := target("US-FL-031")
	fetcher := &mockFetcher{pages: map[string]string{tg.URL: goodPage}}
	publisher := &mockPublisher{}
	runner := newRunner(fetcher, &mockAppender{}, publisher)

	runner.Run(context.Background(), []domain.Target{tg})

	require.Len(t, publisher.published, 1)
	assert.Equal(t, tg.RegionCode, publisher.published[0].RegionCode)
}

func TestRun_CancelledContextStopsBetweenTargets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{pages: map[string]string{}}
	appender := &mockAppender{}
	runner := newRunner(fetcher, appender, nil)

	summary := runner.Run(ctx, []domain.Target{target("US-FL-031"), target("US-CO-013")})

	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Empty(t, fetcher.calls)
	assert.Empty(t, appender.appended)
}

func TestCheckReadiness_FalseBeforeFirstBatch(t *testing.T) {
	runner := newRunner(&mockFetcher{}, &mockAppender{}, nil)

	assert.Error(t, runner.CheckReadiness(context.Background()))

	runner.Run(context.Background(), nil)
	assert.NoError(t, runner.CheckReadiness(context.Background()))
}
