// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pagecraft/pagecraft/internal/cache"
	"github.com/pagecraft/pagecraft/internal/retry"
)

// ResultTTL is how long assembled results stay cached. Degraded zero results
// are cached for the same window so a failing provider is not hammered on
// every dashboard load.
const ResultTTL = 15 * time.Minute

// Window is the trailing period every fetch covers.
const Window = 7 * 24 * time.Hour

// DayCount is one day of a weekday-keyed series.
type DayCount struct {
	Day   string `json:"day"` // weekday short name, e.g. "Mon"
	Count int64  `json:"count"`
}

// Result is the assembled analytics for one website over the trailing week.
type Result struct {
	AnalyticsID string      `json:"analytics_id"`
	Pageviews   int64       `json:"pageviews"`
	Visitors    int64       `json:"visitors"`
	AvgDuration float64     `json:"avg_duration"` // seconds
	Pages       []MetricRow `json:"pages"`
	Referrers   []MetricRow `json:"referrers"`
	Browsers    []MetricRow `json:"browsers"`
	OS          []MetricRow `json:"os"`
	Devices     []MetricRow `json:"devices"`
	Countries   []MetricRow `json:"countries"`
	DailyViews  []DayCount  `json:"daily_views"`
}

// ZeroResult is the degraded placeholder for a website whose fetch failed
// entirely. It carries the id so downstream merging stays uniform.
func ZeroResult(analyticsID string, now time.Time) Result {
	return Result{
		AnalyticsID: analyticsID,
		Pages:       []MetricRow{},
		Referrers:   []MetricRow{},
		Browsers:    []MetricRow{},
		OS:          []MetricRow{},
		Devices:     []MetricRow{},
		Countries:   []MetricRow{},
		DailyViews:  emptyDailySeries(now),
	}
}

// Aggregator assembles per-website analytics from the provider, caching both
// successes and failures.
type Aggregator struct {
	provider Provider
	cache    *cache.Typed[Result]
	log      *slog.Logger
	retryCfg retry.Config
	now      func() time.Time
}

// NewAggregator wires an aggregator over the given provider and cache backend.
func NewAggregator(p Provider, c cache.Cache, log *slog.Logger) *Aggregator {
	return &Aggregator{
		provider: p,
		cache:    cache.NewTyped[Result](c, ResultTTL),
		log:      log,
		retryCfg: retry.DefaultConfig(),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }

// FetchSite returns the analytics result for one website, from cache when
// fresh. A failed base-stats fetch short-circuits: the zero result is cached
// and returned without attempting the dimension breakdowns. Individual
// dimension failures degrade to empty lists without affecting the others.
func (a *Aggregator) FetchSite(ctx context.Context, analyticsID string) Result {
	if res, ok := a.cache.Get(ctx, resultKey(analyticsID)); ok {
		return res
	}

	endAt := a.now()
	startAt := endAt.Add(-Window)

	stats, err := retry.Do(ctx, a.retryCfg, func(ctx context.Context) (Stats, error) {
		return a.provider.Stats(ctx, analyticsID, startAt, endAt)
	})
	if err != nil {
		a.log.Warn("analytics stats fetch failed, caching zero result",
			"analytics_id", analyticsID, "error", err)
		res := ZeroResult(analyticsID, endAt)
		a.cacheResult(ctx, res)
		return res
	}

	res := Result{
		AnalyticsID: analyticsID,
		Pageviews:   stats.Pageviews,
		Visitors:    stats.Visitors,
		AvgDuration: stats.AvgDuration,
	}

	dims := []struct {
		dimension string
		dest      *[]MetricRow
	}{
		{DimensionURL, &res.Pages},
		{DimensionReferrer, &res.Referrers},
		{DimensionBrowser, &res.Browsers},
		{DimensionOS, &res.OS},
		{DimensionDevice, &res.Devices},
		{DimensionCountry, &res.Countries},
	}

	var wg sync.WaitGroup
	for _, d := range dims {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*d.dest = retry.DoOr(ctx, a.retryCfg, a.log, "analytics metrics "+d.dimension,
				[]MetricRow{}, func(ctx context.Context) ([]MetricRow, error) {
					return a.provider.Metrics(ctx, analyticsID, d.dimension, startAt, endAt)
				})
		}()
	}
	wg.Wait()

	res.DailyViews = buildDailySeries(res.Pages, endAt)

	a.cacheResult(ctx, res)
	return res
}

// FetchSites fetches every website concurrently with settle-all semantics: a
// panic or total failure in one fetch yields a zero placeholder for that
// website only. Results come back in input order.
func (a *Aggregator) FetchSites(ctx context.Context, analyticsIDs []string) []Result {
	results := make([]Result, len(analyticsIDs))

	var wg sync.WaitGroup
	for i, id := range analyticsIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("analytics fetch panicked",
						"analytics_id", id, "panic", r)
					results[i] = ZeroResult(id, a.now())
				}
			}()
			results[i] = a.FetchSite(ctx, id)
		}()
	}
	wg.Wait()

	return results
}

// MergeByName merges one dimension across results: rows sharing a name have
// their values summed. Output order is first appearance, not sorted.
func MergeByName(results []Result, dimension func(Result) []MetricRow) []MetricRow {
	merged := []MetricRow{}
	index := make(map[string]int)

	for _, res := range results {
		for _, row := range dimension(res) {
			if i, ok := index[row.Name]; ok {
				merged[i].Value += row.Value
				continue
			}
			index[row.Name] = len(merged)
			merged = append(merged, row)
		}
	}
	return merged
}

func (a *Aggregator) cacheResult(ctx context.Context, res Result) {
	if err := a.cache.Set(ctx, resultKey(res.AnalyticsID), res); err != nil {
		a.log.Warn("caching analytics result failed",
			"analytics_id", res.AnalyticsID, "error", err)
	}
}

func resultKey(analyticsID string) string {
	return "analytics:" + analyticsID
}

// emptyDailySeries returns the trailing week as zero-valued weekday buckets,
// oldest day first, ending today.
func emptyDailySeries(now time.Time) []DayCount {
	series := make([]DayCount, 0, 7)
	for i := 6; i >= 0; i-- {
		series = append(series, DayCount{Day: now.AddDate(0, 0, -i).Format("Mon")})
	}
	return series
}

// buildDailySeries overlays per-day pageview counts onto the zero-filled week.
// The provider's url dimension carries time buckets as date-named rows; rows
// whose name is not a date (plain page paths) are ignored.
func buildDailySeries(rows []MetricRow, now time.Time) []DayCount {
	series := emptyDailySeries(now)

	cutoff := now.AddDate(0, 0, -7)
	byDay := make(map[string]int, len(series))
	for i, d := range series {
		byDay[d.Day] = i
	}

	for _, row := range rows {
		day, err := time.Parse("2006-01-02", row.Name)
		if err != nil {
			continue
		}
		if day.Before(cutoff) || day.After(now) {
			continue
		}
		if i, ok := byDay[day.Format("Mon")]; ok {
			series[i].Count += row.Value
		}
	}
	return series
}
