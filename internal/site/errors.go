// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers both missing sites and sites owned by someone else,
	// so a caller cannot probe for the existence of other owners' sites.
	ErrNotFound = errors.New("site not found")

	// ErrDuplicateSlug means the requested subdomain is already taken.
	ErrDuplicateSlug = errors.New("subdomain already in use")
)

// ValidationError lists the fields a create or update request is missing or
// got wrong.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}
