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
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/datamapper/database"
	dmerrors "github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/types"
)

type bunGateway struct {
	db   bun.IDB
	info TableInfo
	opts options
}

// NewTableGateway returns a gateway over the table described by info.
func NewTableGateway(db bun.IDB, info TableInfo, opts ...Option) TableGateway {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	info.PrimaryKeys = append([]string(nil), info.PrimaryKeys...)
	info.Columns = append([]string(nil), info.Columns...)
	return &bunGateway{db: db, info: info, opts: o}
}

func (g *bunGateway) Info() TableInfo {
	info := g.info
	info.PrimaryKeys = append([]string(nil), g.info.PrimaryKeys...)
	info.Columns = append([]string(nil), g.info.Columns...)
	return info
}

func (g *bunGateway) Dialect() schema.Dialect { return g.db.Dialect() }

func (g *bunGateway) WithTx(tx bun.Tx) TableGateway {
	return &bunGateway{db: tx, info: g.info, opts: g.opts}
}

func (g *bunGateway) table() schema.Ident { return bun.Ident(g.info.Name) }

func (g *bunGateway) where(q *bun.SelectQuery, filter *types.QueryFilter) *bun.SelectQuery {
	if filter == nil {
		return q
	}
	for _, f := range filter.Filters {
		if f.Value == nil {
			q = q.Where("?.? IS NULL", g.table(), bun.Ident(f.Column))
			continue
		}
		q = q.Where("?.? = ?", g.table(), bun.Ident(f.Column), f.Value)
	}
	return q
}

func (g *bunGateway) newSelect(filter *types.QueryFilter) *bun.SelectQuery {
	return g.where(g.db.NewSelect().TableExpr("?", g.table()), filter)
}

func (g *bunGateway) Select(ctx context.Context, query Query) ([]Row, error) {
	q := g.newSelect(query.Filter)
	if query.Page.IsPaged() {
		orders := query.Page.GetOrders()
		if len(orders) == 0 {
			for _, pk := range g.info.PrimaryKeys {
				q = q.OrderExpr("?.? ASC", g.table(), bun.Ident(pk))
			}
		}
		for _, order := range orders {
			q = q.OrderExpr(order)
		}
		q = q.Limit(query.Page.GetPageSize()).Offset(query.Page.GetOffset())
	}

	var rows []Row
	if err := q.Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	for _, row := range rows {
		normalize(row)
	}
	return rows, nil
}

func (g *bunGateway) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return g.newSelect(filter).Count(ctx)
}

func (g *bunGateway) Page(ctx context.Context, query Query) (*types.Pagination[Row], error) {
	pagination := types.NewDefaultPagination[Row](query.Page.GetPage(), query.Page.GetPageSize())
	total, err := g.Count(ctx, query.Filter)
	if err != nil || total == 0 {
		return pagination, err
	}
	rows, err := g.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = rows
	return pagination, nil
}

// keyFilter builds the primary-key predicate from key, in key column order.
func (g *bunGateway) keyFilter(key Row) (*types.QueryFilter, error) {
	if len(g.info.PrimaryKeys) == 0 {
		return nil, fmt.Errorf("table %s has no primary key", g.info.Name)
	}
	filter := types.NewQueryFilter()
	for _, pk := range g.info.PrimaryKeys {
		v, ok := key[pk]
		if !ok {
			return nil, dmerrors.NewFieldNotFoundError(pk)
		}
		filter.Where(pk, v)
	}
	return filter, nil
}

func (g *bunGateway) Read(ctx context.Context, key Row) (Row, error) {
	filter, err := g.keyFilter(key)
	if err != nil {
		return nil, err
	}
	rows, err := g.Select(ctx, Query{Filter: filter, Page: types.NewPageRequest(1, 1)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, dmerrors.NewRowNotFoundError(g.info.Name, key)
	}
	return rows[0], nil
}

func (g *bunGateway) Create(ctx context.Context, values Row) (Row, error) {
	row := make(Row, len(values)+2)
	for k, v := range values {
		row[k] = v
	}
	if c := g.opts.createdColumn; c != "" && g.info.HasColumn(c) && row[c] == nil {
		row[c] = g.opts.clock()
	}
	if g.opts.keyStrategy == database.KeyStrategyUUID && len(g.info.PrimaryKeys) == 1 {
		if pk := g.info.PrimaryKeys[0]; row[pk] == nil {
			row[pk] = uuid.NewString()
		}
	}

	insert := g.db.NewInsert().Model(&row).TableExpr("?", g.table())

	key, complete := g.presentKey(row)
	switch {
	case complete:
		if _, err := insert.Exec(ctx); err != nil {
			return nil, err
		}
		return g.Read(ctx, key)
	case len(g.info.PrimaryKeys) == 1:
		id, err := g.insertReturningID(ctx, insert)
		if err != nil {
			return nil, err
		}
		return g.Read(ctx, Row{g.info.PrimaryKeys[0]: id})
	default:
		if _, err := insert.Exec(ctx); err != nil {
			return nil, err
		}
		g.opts.logger.Debug("inserted row without a complete key, not refreshed", "table", g.info.Name)
		normalize(row)
		return row, nil
	}
}

// insertReturningID executes insert and returns the generated key, through
// RETURNING where the dialect supports it and LastInsertId otherwise.
func (g *bunGateway) insertReturningID(ctx context.Context, insert *bun.InsertQuery) (interface{}, error) {
	pk := g.info.PrimaryKeys[0]
	if g.db.Dialect().Features().Has(feature.InsertReturning) {
		var id interface{}
		if err := insert.Returning("?", bun.Ident(pk)).Scan(ctx, &id); err != nil {
			return nil, err
		}
		if b, ok := id.([]byte); ok {
			id = string(b)
		}
		return id, nil
	}

	res, err := insert.Exec(ctx)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read generated key of %s: %w", g.info.Name, err)
	}
	return id, nil
}

func (g *bunGateway) presentKey(row Row) (Row, bool) {
	if len(g.info.PrimaryKeys) == 0 {
		return nil, false
	}
	key := make(Row, len(g.info.PrimaryKeys))
	for _, pk := range g.info.PrimaryKeys {
		v, ok := row[pk]
		if !ok || v == nil {
			return nil, false
		}
		key[pk] = v
	}
	return key, true
}

// Update writes values to the row identified by key. Primary key columns in
// values are ignored.
func (g *bunGateway) Update(ctx context.Context, key Row, values Row) (Row, error) {
	filter, err := g.keyFilter(key)
	if err != nil {
		return nil, err
	}
	if _, err := g.Read(ctx, key); err != nil {
		return nil, err
	}

	set := make(Row, len(values)+1)
	for k, v := range values {
		if !g.info.IsPrimaryKey(k) {
			set[k] = v
		}
	}
	if c := g.opts.updatedColumn; c != "" && g.info.HasColumn(c) {
		set[c] = g.opts.clock()
	}

	if len(set) > 0 {
		q := g.db.NewUpdate().Model(&set).TableExpr("?", g.table())
		for _, f := range filter.Filters {
			q = q.Where("?.? = ?", g.table(), bun.Ident(f.Column), f.Value)
		}
		if _, err := q.Exec(ctx); err != nil {
			return nil, err
		}
	}
	return g.Read(ctx, key)
}

func (g *bunGateway) Delete(ctx context.Context, key Row) error {
	filter, err := g.keyFilter(key)
	if err != nil {
		return err
	}
	if _, err := g.Read(ctx, key); err != nil {
		return err
	}

	q := g.db.NewDelete().TableExpr("?", g.table())
	for _, f := range filter.Filters {
		q = q.Where("?.? = ?", g.table(), bun.Ident(f.Column), f.Value)
	}
	_, err = q.Exec(ctx)
	return err
}

func normalize(row Row) {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
}
