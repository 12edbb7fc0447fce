// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"

	"github.com/autobrr/marquee/internal/dbinterface"
)

// mockQuerier wraps sql.DB to implement dbinterface.TxBeginner for tests
type mockQuerier struct {
	*sql.DB
}

func newMockQuerier(db *sql.DB) *mockQuerier {
	return &mockQuerier{
		DB: db,
	}
}

func (m *mockQuerier) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbinterface.TxQuerier, error) {
	return m.DB.BeginTx(ctx, opts)
}
