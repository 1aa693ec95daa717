// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/pagecraft/pagecraft/internal/model"
)

// RecentOrdersLimit is how many orders the report lists.
const RecentOrdersLimit = 5

// ReportStore is the slice of the row store the report builder reads.
type ReportStore interface {
	ListSitesByOwner(ctx context.Context, ownerID int64) ([]model.Site, error)
	ListDomainsBySiteIDs(ctx context.Context, siteIDs []int64) ([]model.Domain, error)
	ListOrdersByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]model.Order, error)
	ListRecentOrdersByOwner(ctx context.Context, ownerID int64, limit int) ([]model.Order, error)
}

// Fetcher is the aggregator as the report builder sees it.
type Fetcher interface {
	FetchSite(ctx context.Context, analyticsID string) Result
}

// SiteSummary is one site's row in the dashboard report.
type SiteSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Image  string `json:"image"`
	Views  int64  `json:"views"`
	Orders int64  `json:"orders"`
}

// OrderSummary is one row of the recent-orders list.
type OrderSummary struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	ProductName  string    `json:"product_name"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Report is the assembled dashboard payload. Every field is always present;
// under total backend failure the report is all zeros, never an error.
type Report struct {
	TotalViews     int64          `json:"total_views"`
	TotalOrders    int64          `json:"total_orders"`
	ConversionRate string         `json:"conversion_rate"`
	AvgTimeOnSite  string         `json:"avg_time_on_site"`
	Sites          []SiteSummary  `json:"sites"`
	ViewsByDay     []DayCount     `json:"views_by_day"`
	OrdersByDay    []DayCount     `json:"orders_by_day"`
	RecentOrders   []OrderSummary `json:"recent_orders"`
	Devices        []MetricRow    `json:"devices"`
	Browsers       []MetricRow    `json:"browsers"`
	OS             []MetricRow    `json:"os"`
	Countries      []MetricRow    `json:"countries"`
}

// ReportBuilder assembles dashboard reports for one owner at a time.
type ReportBuilder struct {
	store   ReportStore
	fetcher Fetcher
	log     *slog.Logger
	now     func() time.Time
}

// NewReportBuilder wires a builder over the store and aggregator.
func NewReportBuilder(s ReportStore, f Fetcher, log *slog.Logger) *ReportBuilder {
	return &ReportBuilder{store: s, fetcher: f, log: log, now: time.Now}
}

// SetClock overrides the time source. Tests only.
func (b *ReportBuilder) SetClock(now func() time.Time) { b.now = now }

// Build assembles the owner's dashboard. When focusSiteID is non-zero only
// that site's analytics are fetched; other sites appear with zero views.
// When it is zero every site with an analytics id is fetched.
func (b *ReportBuilder) Build(ctx context.Context, ownerID, focusSiteID int64) Report {
	now := b.now()

	sites, err := b.store.ListSitesByOwner(ctx, ownerID)
	if err != nil {
		b.log.Error("listing sites for dashboard failed, returning empty report",
			"owner_id", ownerID, "error", err)
		return ZeroReport(now)
	}

	analyticsIDs := b.resolveAnalyticsIDs(ctx, sites)

	results := b.fetchAll(ctx, sites, analyticsIDs, focusSiteID, now)

	weekAgo := now.AddDate(0, 0, -7)
	orders, err := b.store.ListOrdersByOwnerSince(ctx, ownerID, weekAgo)
	if err != nil {
		b.log.Warn("listing orders for dashboard failed",
			"owner_id", ownerID, "error", err)
		orders = nil
	}

	ordersBySite := make(map[int64]int64, len(sites))
	for _, o := range orders {
		ordersBySite[o.SiteID]++
	}

	report := Report{
		ConversionRate: "0%",
		AvgTimeOnSite:  "0m 0s",
		Sites:          make([]SiteSummary, 0, len(sites)),
		ViewsByDay:     emptyDailySeries(now),
		OrdersByDay:    emptyDailySeries(now),
		RecentOrders:   []OrderSummary{},
	}

	var totalDuration float64
	for i, s := range sites {
		res := results[i]
		report.TotalViews += res.Pageviews
		totalDuration += res.AvgDuration

		report.Sites = append(report.Sites, SiteSummary{
			ID:     s.ID,
			Name:   s.Name,
			Slug:   slugFor(s.ID, analyticsIDs),
			Status: s.Status,
			Image:  s.HeroImage.String,
			Views:  res.Pageviews,
			Orders: ordersBySite[s.ID],
		})

		overlaySeries(report.ViewsByDay, res.DailyViews)
	}

	report.TotalOrders = int64(len(orders))
	if report.TotalViews > 0 {
		rate := float64(report.TotalOrders) / float64(report.TotalViews) * 100
		report.ConversionRate = fmt.Sprintf("%d%%", int(math.Round(rate)))
	}
	// Unweighted mean across sites: a low-traffic site pulls the average as
	// hard as a busy one.
	if len(sites) > 0 {
		report.AvgTimeOnSite = formatDuration(totalDuration / float64(len(sites)))
	}

	bucketOrders(report.OrdersByDay, orders, now)

	report.RecentOrders = b.recentOrders(ctx, ownerID)

	report.Devices = MergeByName(results, func(r Result) []MetricRow { return r.Devices })
	report.Browsers = MergeByName(results, func(r Result) []MetricRow { return r.Browsers })
	report.OS = MergeByName(results, func(r Result) []MetricRow { return r.OS })
	report.Countries = MergeByName(results, func(r Result) []MetricRow { return r.Countries })

	return report
}

// ZeroReport is the top-level fail-safe: all-zero totals, a zero-filled week
// in both series, empty lists.
func ZeroReport(now time.Time) Report {
	return Report{
		ConversionRate: "0%",
		AvgTimeOnSite:  "0m 0s",
		Sites:          []SiteSummary{},
		ViewsByDay:     emptyDailySeries(now),
		OrdersByDay:    emptyDailySeries(now),
		RecentOrders:   []OrderSummary{},
		Devices:        []MetricRow{},
		Browsers:       []MetricRow{},
		OS:             []MetricRow{},
		Countries:      []MetricRow{},
	}
}

// siteAnalytics pairs a site with its resolved domain record.
type siteAnalytics struct {
	analyticsID string
	slug        string
}

// resolveAnalyticsIDs batch-loads the sites' domain records in one query and
// returns an in-memory lookup. A lookup failure degrades to no analytics.
func (b *ReportBuilder) resolveAnalyticsIDs(ctx context.Context, sites []model.Site) map[int64]siteAnalytics {
	ids := make([]int64, len(sites))
	for i, s := range sites {
		ids[i] = s.ID
	}

	domains, err := b.store.ListDomainsBySiteIDs(ctx, ids)
	if err != nil {
		b.log.Warn("batch domain lookup failed", "error", err)
		return map[int64]siteAnalytics{}
	}

	m := make(map[int64]siteAnalytics, len(domains))
	for _, d := range domains {
		m[d.SiteID] = siteAnalytics{
			analyticsID: d.AnalyticsSiteID.String,
			slug:        d.Subdomain,
		}
	}
	return m
}

// fetchAll fetches analytics per site with settle-all semantics: a panic in
// one site's fetch leaves that site on its zero placeholder without touching
// the others. Sites without an analytics id, and non-focus sites when a focus
// is requested, are skipped and keep zero values.
func (b *ReportBuilder) fetchAll(ctx context.Context, sites []model.Site, byID map[int64]siteAnalytics, focusSiteID int64, now time.Time) []Result {
	results := make([]Result, len(sites))
	for i := range results {
		results[i] = ZeroResult("", now)
	}

	var wg sync.WaitGroup
	for i, s := range sites {
		sa, ok := byID[s.ID]
		if !ok || sa.analyticsID == "" {
			continue
		}
		if focusSiteID != 0 && s.ID != focusSiteID {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("site analytics fetch panicked",
						"site_id", s.ID, "panic", r)
					results[i] = ZeroResult(sa.analyticsID, now)
				}
			}()
			results[i] = b.fetcher.FetchSite(ctx, sa.analyticsID)
		}()
	}
	wg.Wait()

	return results
}

// recentOrders lists the owner's latest orders, formatting each one
// fault-tolerantly: a malformed order becomes a placeholder row instead of
// dropping the list.
func (b *ReportBuilder) recentOrders(ctx context.Context, ownerID int64) []OrderSummary {
	orders, err := b.store.ListRecentOrdersByOwner(ctx, ownerID, RecentOrdersLimit)
	if err != nil {
		b.log.Warn("listing recent orders failed", "owner_id", ownerID, "error", err)
		return []OrderSummary{}
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, formatOrder(o))
	}
	return out
}

// formatOrder never fails: missing fields fall back to placeholders.
func formatOrder(o model.Order) OrderSummary {
	s := OrderSummary{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		ProductName:  o.ProductName,
		Amount:       o.Amount,
		Currency:     o.Currency,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if s.ID == "" {
		s.ID = "unknown"
	}
	if s.CustomerName == "" {
		s.CustomerName = "Anonymous"
	}
	if s.ProductName == "" {
		s.ProductName = "Unknown product"
	}
	if s.Currency == "" {
		s.Currency = "$"
	}
	if s.Status == "" {
		s.Status = model.OrderStatusPending
	}
	return s
}

func slugFor(siteID int64, byID map[int64]siteAnalytics) string {
	return byID[siteID].slug
}

// overlaySeries adds src counts into dst, matching by weekday label. Both
// series cover the same trailing week so labels line up one to one.
func overlaySeries(dst, src []DayCount) {
	byDay := make(map[string]int, len(dst))
	for i, d := range dst {
		byDay[d.Day] = i
	}
	for _, d := range src {
		if i, ok := byDay[d.Day]; ok {
			dst[i].Count += d.Count
		}
	}
}

// bucketOrders counts orders into weekday buckets over the trailing week.
func bucketOrders(dst []DayCount, orders []model.Order, now time.Time) {
	byDay := make(map[string]int, len(dst))
	for i, d := range dst {
		byDay[d.Day] = i
	}
	cutoff := now.AddDate(0, 0, -7)
	for _, o := range orders {
		if o.CreatedAt.Before(cutoff) || o.CreatedAt.After(now) {
			continue
		}
		if i, ok := byDay[o.CreatedAt.Format("Mon")]; ok {
			dst[i].Count++
		}
	}
}

// formatDuration renders seconds as "{m}m {s}s".
func formatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
