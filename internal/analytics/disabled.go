// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by the Disabled provider. Callers treat provider
// failures as soft, so running without an analytics server degrades to
// zero-valued reports rather than breaking site management.
var ErrDisabled = errors.New("analytics: provider not configured")

// Disabled is the Provider used when no analytics server is configured.
type Disabled struct{}

func (Disabled) Stats(context.Context, string, time.Time, time.Time) (Stats, error) {
	return Stats{}, ErrDisabled
}

func (Disabled) Metrics(context.Context, string, string, time.Time, time.Time) ([]MetricRow, error) {
	return nil, ErrDisabled
}

func (Disabled) CreateWebsite(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

func (Disabled) DeleteWebsite(context.Context, string) error {
	return ErrDisabled
}
