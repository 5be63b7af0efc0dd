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

package record

import (
	"iter"

	"github.com/tomoncle/datamapper/errors"
	"github.com/tomoncle/datamapper/types"
)

// Set is an ordered, seekable collection of data objects built from raw
// rows. Each row is turned into an object by the factory on first access
// and cached; the factory runs at most once per position.
//
// A Set is not safe for concurrent use.
type Set[T Model] struct {
	rows    []map[string]interface{}
	factory Factory[T]
	pointer int
	count   int
	objects []T
	loaded  []bool
}

// NewSet creates a set over rows. The rows are never modified.
func NewSet[T Model](rows []map[string]interface{}, factory Factory[T]) *Set[T] {
	return &Set[T]{
		rows:    rows,
		factory: factory,
		count:   len(rows),
		objects: make([]T, len(rows)),
		loaded:  make([]bool, len(rows)),
	}
}

// Count returns the number of rows.
func (s *Set[T]) Count() int {
	return s.count
}

// Rewind moves the cursor to the first row.
func (s *Set[T]) Rewind() *Set[T] {
	s.pointer = 0
	return s
}

// Key returns the cursor position.
func (s *Set[T]) Key() int {
	return s.pointer
}

// Next advances the cursor; moving past the end makes the set invalid.
func (s *Set[T]) Next() {
	s.pointer++
}

// Valid reports whether the cursor points at a row.
func (s *Set[T]) Valid() bool {
	return s.pointer >= 0 && s.pointer < s.count
}

// Current returns the object at the cursor, or the zero value when the
// cursor is invalid.
func (s *Set[T]) Current() T {
	if !s.Valid() {
		var zero T
		return zero
	}
	return s.materialize(s.pointer)
}

// Seek moves the cursor to position.
func (s *Set[T]) Seek(position int) (*Set[T], error) {
	if position < 0 || position >= s.count {
		return s, errors.NewIndexOutOfRangeError(position, s.count)
	}
	s.pointer = position
	return s, nil
}

// Row returns the object at position. The cursor is restored afterwards
// unless keepPosition is true.
func (s *Set[T]) Row(position int, keepPosition bool) (T, error) {
	key := s.pointer
	if _, err := s.Seek(position); err != nil {
		var zero T
		return zero, errors.NewRowPositionError(position, err)
	}
	row := s.Current()
	if !keepPosition {
		s.pointer = key
	}
	return row, nil
}

// At returns the object at index and leaves the cursor there.
func (s *Set[T]) At(index int) (T, error) {
	if _, err := s.Seek(index); err != nil {
		var zero T
		return zero, err
	}
	return s.Current(), nil
}

// Exists reports whether index addresses a row.
func (s *Set[T]) Exists(index int) bool {
	return index >= 0 && index < s.count
}

// All iterates over every row in order without moving the cursor.
func (s *Set[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < s.count; i++ {
			if !yield(i, s.materialize(i)) {
				return
			}
		}
	}
}

// ToArray returns the rows as maps. Rows that were already materialized are
// taken from their object, so changes made through the object show up;
// rows never accessed are returned in their raw form.
func (s *Set[T]) ToArray() []map[string]interface{} {
	out := make([]map[string]interface{}, s.count)
	for i, raw := range s.rows {
		if s.loaded[i] {
			out[i] = s.objects[i].ToMap()
			continue
		}
		row := make(map[string]interface{}, len(raw))
		for k, v := range raw {
			row[k] = v
		}
		out[i] = row
	}
	return out
}

// ToJSON returns ToArray as a JSON column value.
func (s *Set[T]) ToJSON() types.JsonArray {
	rows := s.ToArray()
	out := make(types.JsonArray, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	return out
}

func (s *Set[T]) materialize(i int) T {
	if !s.loaded[i] {
		s.objects[i] = s.factory(s.rows[i])
		s.loaded[i] = true
	}
	return s.objects[i]
}
