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

package finder_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/finder"
	"github.com/tomoncle/datamapper/record"
	"github.com/tomoncle/datamapper/repository"
	"github.com/tomoncle/datamapper/types"
)

// memoryGateway filters its rows in memory and records every query.
type memoryGateway struct {
	info    repository.TableInfo
	rows    []repository.Row
	queries []repository.Query
	err     error
}

func (g *memoryGateway) Info() repository.TableInfo { return g.info }

func (g *memoryGateway) Select(_ context.Context, q repository.Query) ([]repository.Row, error) {
	g.queries = append(g.queries, q)
	if g.err != nil {
		return nil, g.err
	}
	var out []repository.Row
	for _, row := range g.rows {
		if matches(row, q.Filter) {
			out = append(out, row)
		}
	}
	if q.Page.IsPaged() {
		start := q.Page.GetOffset()
		if start > len(out) {
			start = len(out)
		}
		end := start + q.Page.GetPageSize()
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (g *memoryGateway) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	rows, err := g.Select(ctx, repository.Query{Filter: filter})
	return len(rows), err
}

func (g *memoryGateway) Read(ctx context.Context, key repository.Row) (repository.Row, error) {
	return nil, errors.NewRowNotFoundError(g.info.Name, key)
}

func matches(row repository.Row, filter *types.QueryFilter) bool {
	if filter == nil {
		return true
	}
	for _, f := range filter.Filters {
		if row[f.Column] != f.Value {
			return false
		}
	}
	return true
}

func newGateway() *memoryGateway {
	return &memoryGateway{
		info: repository.TableInfo{
			Name:        "product_colors",
			PrimaryKeys: []string{"product_id", "color"},
			Columns:     []string{"product_id", "color", "stock"},
		},
		rows: []repository.Row{
			{"product_id": 1, "color": "red", "stock": 3},
			{"product_id": 1, "color": "blue", "stock": 0},
			{"product_id": 2, "color": "red", "stock": 5},
		},
	}
}

func newDispatcher(g *memoryGateway) *finder.Dispatcher[*record.Object] {
	return finder.NewDispatcher(g, record.ObjectFactory, nil)
}

func stock(t *testing.T, obj *record.Object) interface{} {
	t.Helper()
	v, err := obj.Get("stock")
	require.NoError(t, err)
	return v
}

func TestDispatchFindByPrimaryKey(t *testing.T) {
	g := newGateway()
	d := newDispatcher(g)

	res, err := d.Dispatch(context.Background(), "find", 1, "blue")
	require.NoError(t, err)
	assert.Equal(t, finder.ActionFind, res.Action)
	obj := res.One()
	require.NotNil(t, obj)
	assert.Equal(t, 0, stock(t, obj))

	require.Len(t, g.queries, 1)
	assert.Equal(t, []types.Filter{{Column: "product_id", Value: 1}, {Column: "color", Value: "blue"}}, g.queries[0].Filter.Filters)
}

func TestDispatchFindMissingReturnsNil(t *testing.T) {
	d := newDispatcher(newGateway())

	res, err := d.Dispatch(context.Background(), "find", 9, "green")
	require.NoError(t, err)
	assert.Nil(t, res.One())

	obj, err := d.Find(context.Background(), nil, 9, "green")
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestDispatchFetchBy(t *testing.T) {
	d := newDispatcher(newGateway())

	res, err := d.Dispatch(context.Background(), "fetchByColor", "red")
	require.NoError(t, err)
	assert.Equal(t, finder.ActionFetch, res.Action)
	assert.Equal(t, 2, res.Set.Count())

	res, err = d.Dispatch(context.Background(), "fetchByProductIdAndColor", 2, "red")
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Count())
	assert.Equal(t, 5, stock(t, res.Set.Current()))
}

func TestDispatchFetchEmptyIsNotNil(t *testing.T) {
	d := newDispatcher(newGateway())

	set, err := d.Fetch(context.Background(), []string{"color"}, "green")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 0, set.Count())
	assert.False(t, set.Rewind().Valid())
}

func TestDispatchArgumentCountMismatch(t *testing.T) {
	g := newGateway()
	d := newDispatcher(g)

	_, err := d.Dispatch(context.Background(), "fetchByProductIdAndColor", 1, "red", "extra")
	assert.True(t, errors.IsArgumentCountMismatch(err))

	_, err = d.Dispatch(context.Background(), "find", 1)
	assert.True(t, errors.IsArgumentCountMismatch(err))

	var mismatch *errors.ArgumentCountMismatchError
	require.True(t, stderrors.As(err, &mismatch))
	assert.Equal(t, []string{"product_id", "color"}, mismatch.Columns)
	assert.Equal(t, 1, mismatch.Arguments)
	assert.Empty(t, g.queries, "no query is issued on arity errors")
}

func TestDispatchUnknownOperation(t *testing.T) {
	d := newDispatcher(newGateway())
	_, err := d.Dispatch(context.Background(), "loadByColor", "red")
	assert.True(t, errors.IsUnknownOperation(err))

	_, err = d.Execute(context.Background(), finder.Invocation{Name: "x"}, nil)
	assert.True(t, errors.IsUnknownOperation(err))
}

func TestDispatchTypedColumnsAreCanonicalized(t *testing.T) {
	g := newGateway()
	d := newDispatcher(g)

	set, err := d.Fetch(context.Background(), []string{"productId"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Count())
	assert.Equal(t, "product_id", g.queries[0].Filter.Filters[0].Column)
}

func TestDispatchPassesPageThrough(t *testing.T) {
	g := newGateway()
	d := newDispatcher(g)

	inv, err := finder.Parse("fetchByColor")
	require.NoError(t, err)
	res, err := d.Execute(context.Background(), inv, types.NewPageRequest(2, 1), "red")
	require.NoError(t, err)
	require.Equal(t, 1, res.Set.Count())
	assert.Equal(t, 5, stock(t, res.Set.Current()))
	assert.Equal(t, 2, g.queries[0].Page.GetPage())
}

func TestDispatchStorageFailure(t *testing.T) {
	g := newGateway()
	g.err = stderrors.New("connection refused")
	d := newDispatcher(g)

	_, err := d.Dispatch(context.Background(), "fetchByColor", "red")
	assert.ErrorIs(t, err, g.err)
}
