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

package database

import (
	"sort"
	"sync"
)

// TableRegistry stores declared tables by name.
type TableRegistry interface {
	Register(table TableConfig)
	Lookup(name string) (TableConfig, bool)
	Tables() []TableConfig
}

type tableRegistry struct {
	tables map[string]TableConfig
	mutex  sync.RWMutex
}

// NewTableRegistry returns a registry pre-filled with tables. Later
// declarations of the same name replace earlier ones.
func NewTableRegistry(tables ...TableConfig) TableRegistry {
	r := &tableRegistry{tables: make(map[string]TableConfig, len(tables))}
	for _, t := range tables {
		r.Register(t)
	}
	return r
}

func (r *tableRegistry) Register(table TableConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	table.PrimaryKeys = append([]string(nil), table.PrimaryKeys...)
	table.Columns = append([]string(nil), table.Columns...)
	r.tables[table.Name] = table
}

func (r *tableRegistry) Lookup(name string) (TableConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns every declared table sorted by name.
func (r *tableRegistry) Tables() []TableConfig {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]TableConfig, 0, len(r.tables))
	for _, t := range r.tables {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
