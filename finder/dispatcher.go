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

package finder

import (
	"context"

	"github.com/tomoncle/datamapper/database"
	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/naming"
	"github.com/tomoncle/datamapper/record"
	"github.com/tomoncle/datamapper/repository"
	"github.com/tomoncle/datamapper/types"
)

// Result is the outcome of a dispatched operation. Set is never nil.
type Result[T record.Model] struct {
	Action Action
	Set    *record.Set[T]
}

// One returns the first object of the result, or the zero T when it is empty.
func (r Result[T]) One() T {
	var zero T
	if r.Set == nil || r.Set.Count() == 0 {
		return zero
	}
	obj, err := r.Set.Row(0, false)
	if err != nil {
		return zero
	}
	return obj
}

// Dispatcher turns finder operations into equality queries against a gateway
// and wraps the rows in a lazily materialized result set.
type Dispatcher[T record.Model] struct {
	gateway repository.ReadGateway
	factory record.Factory[T]
	logger  database.Logger
}

func NewDispatcher[T record.Model](gateway repository.ReadGateway, factory record.Factory[T], logger database.Logger) *Dispatcher[T] {
	if logger == nil {
		logger = database.NopLogger{}
	}
	return &Dispatcher[T]{gateway: gateway, factory: factory, logger: logger}
}

// Dispatch parses name and executes it without pagination.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, name string, args ...interface{}) (Result[T], error) {
	inv, err := Parse(name)
	if err != nil {
		return Result[T]{}, err
	}
	return d.Execute(ctx, inv, nil, args...)
}

// Find returns the first object whose columns equal args, or the zero T.
// No columns means the primary key.
func (d *Dispatcher[T]) Find(ctx context.Context, columns []string, args ...interface{}) (T, error) {
	res, err := d.Execute(ctx, Invocation{Name: "find", Action: ActionFind, Columns: columns, By: len(columns) > 0}, nil, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.One(), nil
}

// Fetch returns every object whose columns equal args. The set is empty,
// never nil, when nothing matches.
func (d *Dispatcher[T]) Fetch(ctx context.Context, columns []string, args ...interface{}) (*record.Set[T], error) {
	res, err := d.Execute(ctx, Invocation{Name: "fetch", Action: ActionFetch, Columns: columns, By: len(columns) > 0}, nil, args...)
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// Execute runs inv with args, restricted to page when page is paged. The
// argument count must match the column count before any query is issued.
// A nil argument matches rows where its column IS NULL.
func (d *Dispatcher[T]) Execute(ctx context.Context, inv Invocation, page *types.PageRequest, args ...interface{}) (Result[T], error) {
	if !inv.Action.IsValid() {
		return Result[T]{}, errors.NewUnknownOperationError(inv.Name, "no action")
	}

	columns := make([]string, 0, len(inv.Columns))
	for _, c := range inv.Columns {
		columns = append(columns, naming.Underscore(c))
	}
	if len(columns) == 0 {
		columns = d.gateway.Info().PrimaryKeys
	}
	if len(args) != len(columns) {
		return Result[T]{}, errors.NewArgumentCountMismatchError(columns, len(args))
	}

	filter := types.NewQueryFilter()
	for i, column := range columns {
		filter.Where(column, args[i])
	}

	rows, err := d.gateway.Select(ctx, repository.Query{Filter: filter, Page: page})
	if err != nil {
		d.logger.Warn("finder query failed", "operation", inv.Name, "table", d.gateway.Info().Name, "error", err)
		return Result[T]{}, err
	}

	d.logger.Debug("finder dispatched",
		"operation", inv.Name,
		"action", inv.Action,
		"columns", columns,
		"rows", len(rows),
	)
	return Result[T]{Action: inv.Action, Set: record.NewSet(rows, d.factory)}, nil
}
