// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is a purchase placed through a published site.
type Order struct {
	ID           string    `json:"id"`
	SiteID       int64     `json:"site_id"`
	OwnerID      int64     `json:"owner_id"`
	CustomerName string    `json:"customer_name"`
	ProductName  string    `json:"product_name"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
