// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// warmTimeout bounds one warming pass.
const warmTimeout = 2 * time.Minute

// WarmStore lists the analytics ids worth keeping warm.
type WarmStore interface {
	ListActiveAnalyticsSiteIDs(ctx context.Context) ([]string, error)
}

// Warmer refreshes the analytics cache on the TTL cadence so dashboard loads
// mostly hit warm entries.
type Warmer struct {
	store  WarmStore
	agg    *Aggregator
	cron   *cron.Cron
	logger *slog.Logger
}

// NewWarmer creates a warmer over the store and aggregator.
func NewWarmer(s WarmStore, agg *Aggregator, logger *slog.Logger) *Warmer {
	return &Warmer{
		store:  s,
		agg:    agg,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the warming job every 15 minutes, matching the cache TTL.
func (w *Warmer) Start() error {
	_, err := w.cron.AddFunc("*/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		if err := w.warm(ctx); err != nil {
			w.logger.Error("analytics cache warming failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("analytics warmer started", "jobs", len(w.cron.Entries()))
	return nil
}

// Stop gracefully stops the warmer, waiting for a running pass to finish.
func (w *Warmer) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("analytics warmer stopped")
}

// warm fetches analytics for every active website. FetchSites degrades
// per-website, so one bad website never aborts the pass.
func (w *Warmer) warm(ctx context.Context) error {
	ids, err := w.store.ListActiveAnalyticsSiteIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	w.logger.Info("warming analytics cache", "websites", len(ids))
	w.agg.FetchSites(ctx, ids)
	return nil
}
