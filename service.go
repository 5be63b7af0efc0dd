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

package datamapper

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datamapper/database"
	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/finder"
	"github.com/tomoncle/datamapper/record"
	"github.com/tomoncle/datamapper/repository"
	"github.com/tomoncle/datamapper/types"
)

// Service is the table service of one table, producing objects of type T.
type Service[T record.Model] interface {
	// Name returns the service name the service was looked up with.
	Name() string

	// Table returns the table metadata.
	Table() repository.TableInfo

	// Find returns the object whose primary key equals args, or the zero T.
	Find(ctx context.Context, args ...interface{}) (T, error)

	// FindBy returns the first object whose columns equal args, or the zero T.
	FindBy(ctx context.Context, columns []string, args ...interface{}) (T, error)

	// Fetch returns every object whose primary key equals args.
	Fetch(ctx context.Context, args ...interface{}) (*record.Set[T], error)

	// FetchBy returns every object whose columns equal args.
	FetchBy(ctx context.Context, columns []string, args ...interface{}) (*record.Set[T], error)

	// Call dispatches a finder operation by name, e.g. "fetchByProductIdAndColor".
	Call(ctx context.Context, operation string, args ...interface{}) (finder.Result[T], error)

	// FetchAll returns every object of the table.
	FetchAll(ctx context.Context) (*record.Set[T], error)

	// Page returns one page of objects with the total row count.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// SetPageLimit restricts the next Call, Find, Fetch or FetchAll to one page.
	SetPageLimit(page, limit int)

	Insert(ctx context.Context, obj T) error

	Update(ctx context.Context, obj T) error

	Delete(ctx context.Context, obj T) error

	// FindRow returns the stored row of obj, located by its primary key.
	FindRow(ctx context.Context, obj T) (repository.Row, error)

	// SanitizedRowData keeps only the table's columns.
	SanitizedRowData(data map[string]interface{}) map[string]interface{}

	// ColumnsWithPrefix maps "<prefix>_<column>" to column for every column.
	ColumnsWithPrefix(prefix string) map[string]string

	// WithTx returns a service bound to tx.
	WithTx(tx bun.Tx) Service[T]
}

type baseServiceImpl[T record.Model] struct {
	name       string
	gateway    repository.TableGateway
	factory    record.Factory[T]
	dispatcher *finder.Dispatcher[T]
	logger     database.Logger

	mu       sync.Mutex
	page     int
	pageSize int
}

func newBaseServiceImpl[T record.Model](name string, gateway repository.TableGateway, factory record.Factory[T], logger database.Logger) *baseServiceImpl[T] {
	return &baseServiceImpl[T]{
		name:       name,
		gateway:    gateway,
		factory:    factory,
		dispatcher: finder.NewDispatcher(gateway, factory, logger),
		logger:     logger,
	}
}

func (s *baseServiceImpl[T]) Name() string { return s.name }

func (s *baseServiceImpl[T]) Table() repository.TableInfo { return s.gateway.Info() }

func (s *baseServiceImpl[T]) SetPageLimit(page, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page, s.pageSize = page, limit
}

// takePage returns the pending page, if any, and clears it.
func (s *baseServiceImpl[T]) takePage() *types.PageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, size := s.page, s.pageSize
	s.page, s.pageSize = 0, 0
	if page > 0 && size > 0 {
		return types.NewPageRequest(page, size)
	}
	return nil
}

func (s *baseServiceImpl[T]) execute(ctx context.Context, inv finder.Invocation, args []interface{}) (finder.Result[T], error) {
	return s.dispatcher.Execute(ctx, inv, s.takePage(), args...)
}

func (s *baseServiceImpl[T]) Call(ctx context.Context, operation string, args ...interface{}) (finder.Result[T], error) {
	inv, err := finder.Parse(operation)
	if err != nil {
		s.takePage()
		return finder.Result[T]{}, err
	}
	return s.execute(ctx, inv, args)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, args ...interface{}) (T, error) {
	return s.FindBy(ctx, nil, args...)
}

func (s *baseServiceImpl[T]) FindBy(ctx context.Context, columns []string, args ...interface{}) (T, error) {
	res, err := s.execute(ctx, finder.Invocation{Name: "find", Action: finder.ActionFind, Columns: columns, By: len(columns) > 0}, args)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.One(), nil
}

func (s *baseServiceImpl[T]) Fetch(ctx context.Context, args ...interface{}) (*record.Set[T], error) {
	return s.FetchBy(ctx, nil, args...)
}

func (s *baseServiceImpl[T]) FetchBy(ctx context.Context, columns []string, args ...interface{}) (*record.Set[T], error) {
	res, err := s.execute(ctx, finder.Invocation{Name: "fetch", Action: finder.ActionFetch, Columns: columns, By: len(columns) > 0}, args)
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

func (s *baseServiceImpl[T]) FetchAll(ctx context.Context) (*record.Set[T], error) {
	rows, err := s.gateway.Select(ctx, repository.Query{Page: s.takePage()})
	if err != nil {
		s.logger.Warn("fetch all failed", "service", s.name, "error", err)
		return nil, err
	}
	return record.NewSet(rows, s.factory), nil
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	rows, err := s.gateway.Page(ctx, repository.Query{Page: page})
	if err != nil {
		return nil, err
	}
	result := types.NewDefaultPagination[T](rows.Page, rows.PageSize)
	result.Total = rows.Total
	for _, row := range rows.Items {
		result.Items = append(result.Items, s.factory(row))
	}
	return result, nil
}

func (s *baseServiceImpl[T]) Insert(ctx context.Context, obj T) error {
	row, err := s.gateway.Create(ctx, s.SanitizedRowData(obj.RawData()))
	if err != nil {
		s.logger.Warn("insert failed", "service", s.name, "error", err)
		return err
	}
	obj.SetFromMap(row)
	return nil
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, obj T) error {
	key, err := s.primaryKey(obj)
	if err != nil {
		return err
	}
	row, err := s.gateway.Update(ctx, key, s.SanitizedRowData(obj.RawData()))
	if err != nil {
		if !errors.IsRowNotFound(err) {
			s.logger.Warn("update failed", "service", s.name, "error", err)
		}
		return err
	}
	obj.SetFromMap(row)
	return nil
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, obj T) error {
	key, err := s.primaryKey(obj)
	if err != nil {
		return err
	}
	if err := s.gateway.Delete(ctx, key); err != nil {
		if !errors.IsRowNotFound(err) {
			s.logger.Warn("delete failed", "service", s.name, "error", err)
		}
		return err
	}
	return nil
}

func (s *baseServiceImpl[T]) FindRow(ctx context.Context, obj T) (repository.Row, error) {
	key, err := s.primaryKey(obj)
	if err != nil {
		return nil, err
	}
	return s.gateway.Read(ctx, key)
}

// primaryKey extracts the primary key values of obj.
func (s *baseServiceImpl[T]) primaryKey(obj T) (repository.Row, error) {
	data := obj.RawData()
	info := s.gateway.Info()
	key := make(repository.Row, len(info.PrimaryKeys))
	for _, pk := range info.PrimaryKeys {
		v, ok := data[pk]
		if !ok {
			return nil, errors.NewFieldNotFoundError(pk)
		}
		key[pk] = v
	}
	return key, nil
}

func (s *baseServiceImpl[T]) SanitizedRowData(data map[string]interface{}) map[string]interface{} {
	info := s.gateway.Info()
	out := make(map[string]interface{}, len(info.Columns))
	for _, c := range info.Columns {
		if v, ok := data[c]; ok {
			out[c] = v
		}
	}
	return out
}

func (s *baseServiceImpl[T]) ColumnsWithPrefix(prefix string) map[string]string {
	columns := s.gateway.Info().Columns
	out := make(map[string]string, len(columns))
	for _, c := range columns {
		out[prefix+record.DefaultSeparator+c] = c
	}
	return out
}

func (s *baseServiceImpl[T]) WithTx(tx bun.Tx) Service[T] {
	return newBaseServiceImpl(s.name, s.gateway.WithTx(tx), s.factory, s.logger)
}
