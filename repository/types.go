/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/datamapper/types"
)

// Row is one table row keyed by column name.
type Row = map[string]interface{}

// TableInfo is the metadata a gateway needs: the table name, its primary key
// columns in key order and every column in table order.
type TableInfo struct {
	Name        string
	PrimaryKeys []string
	Columns     []string
}

// HasColumn reports whether column is declared on the table.
func (t TableInfo) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t TableInfo) IsPrimaryKey(column string) bool {
	for _, c := range t.PrimaryKeys {
		if c == column {
			return true
		}
	}
	return false
}

// Query selects rows matching Filter, optionally restricted to one page.
type Query struct {
	Filter *types.QueryFilter
	Page   *types.PageRequest
}

// ReadGateway reads rows from one table.
type ReadGateway interface {
	Info() TableInfo

	Select(ctx context.Context, query Query) ([]Row, error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Read returns the row whose primary key equals key.
	Read(ctx context.Context, key Row) (Row, error)
}

// WriteGateway writes rows of one table. Every write returns the row as
// stored after the write.
type WriteGateway interface {
	Create(ctx context.Context, values Row) (Row, error)

	Update(ctx context.Context, key Row, values Row) (Row, error)

	Delete(ctx context.Context, key Row) error
}

// PageQueryGateway defines pagination with totals.
type PageQueryGateway interface {
	Page(ctx context.Context, query Query) (*types.Pagination[Row], error)
}

// TransactionGateway binds a gateway to a transaction.
type TransactionGateway interface {
	WithTx(tx bun.Tx) TableGateway
}

// TableGateway combines reads, writes, pagination and transactional use of
// a single table.
type TableGateway interface {
	ReadGateway
	WriteGateway
	PageQueryGateway
	TransactionGateway
	Dialect() schema.Dialect
}
