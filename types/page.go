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

package types

// Filter is a single equality predicate: Column = Value.
type Filter struct {
	Column string
	Value  interface{}
}

// QueryFilter is an ordered conjunction of equality filters.
type QueryFilter struct {
	Filters []Filter
}

// NewQueryFilter creates a query filter from column/value pairs.
func NewQueryFilter(filters ...Filter) *QueryFilter {
	return &QueryFilter{Filters: filters}
}

// Where appends an equality filter and returns the receiver for chaining.
func (f *QueryFilter) Where(column string, value interface{}) *QueryFilter {
	f.Filters = append(f.Filters, Filter{Column: column, Value: value})
	return f
}

// Len returns the number of filters; a nil filter has none.
func (f *QueryFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Filters)
}

// PageRequest describes limit-page pagination and ordering. A request whose
// page or page size is not positive is unpaged.
type PageRequest struct {
	page     int
	pageSize int
	orders   []string // "id ASC", "name DESC"
}

func (p *PageRequest) GetPage() int {
	if p == nil {
		return 0
	}
	return p.page
}

func (p *PageRequest) GetPageSize() int {
	if p == nil {
		return 0
	}
	return p.pageSize
}

// GetOffset returns the row offset of the first row of the page.
func (p *PageRequest) GetOffset() int {
	if !p.IsPaged() {
		return 0
	}
	return (p.page - 1) * p.pageSize
}

func (p *PageRequest) GetOrders() []string {
	if p == nil {
		return nil
	}
	return p.orders
}

// IsPaged reports whether both page and page size are positive.
func (p *PageRequest) IsPaged() bool {
	return p != nil && p.page > 0 && p.pageSize > 0
}

// NewPageRequest constructs a PageRequest with order settings.
func NewPageRequest(page int, pageSize int, orders ...string) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, orders: orders}
}

// Pagination holds one page of items along with pagination metadata.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]T, 0)}
}
