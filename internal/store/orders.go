// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pagecraft/pagecraft/internal/model"
)

const orderColumns = `id, site_id, owner_id, customer_name, product_name, amount, currency, status, created_at`

func scanOrder(r rowScanner) (model.Order, error) {
	var o model.Order
	err := r.Scan(&o.ID, &o.SiteID, &o.OwnerID, &o.CustomerName, &o.ProductName,
		&o.Amount, &o.Currency, &o.Status, &o.CreatedAt)
	return o, err
}

// CreateOrder inserts an order.
func (q *Queries) CreateOrder(ctx context.Context, o *model.Order) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO orders (id, site_id, owner_id, customer_name, product_name, amount, currency, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.SiteID, o.OwnerID, o.CustomerName, o.ProductName, o.Amount, o.Currency, o.Status)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

// ListOrdersByOwnerSince returns the owner's orders created at or after
// since, newest first.
func (q *Queries) ListOrdersByOwnerSince(ctx context.Context, ownerID int64, since time.Time) ([]model.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = ? AND created_at >= ? ORDER BY created_at DESC`,
		ownerID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListRecentOrdersByOwner returns the owner's most recent orders.
func (q *Queries) ListRecentOrdersByOwner(ctx context.Context, ownerID int64, limit int) ([]model.Order, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = ? ORDER BY created_at DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
