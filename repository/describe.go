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
	"fmt"
	"sort"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const (
	pgColumnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ?
ORDER BY ordinal_position`

	pgPrimaryKeysQuery = `SELECT kcu.column_name FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = current_schema() AND tc.table_name = ?
ORDER BY kcu.ordinal_position`

	mysqlColumnsQuery = `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

	mysqlPrimaryKeysQuery = `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
ORDER BY ORDINAL_POSITION`
)

// Describe introspects the columns and primary key of table. A table that
// does not exist yields a "no such table" error on every dialect.
func Describe(ctx context.Context, db bun.IDB, table string) (TableInfo, error) {
	info := TableInfo{Name: table}
	var err error

	switch name := db.Dialect().Name(); name {
	case dialect.SQLite:
		info.Columns, info.PrimaryKeys, err = describeSQLite(ctx, db, table)
	case dialect.PG:
		if info.Columns, err = queryStrings(ctx, db, pgColumnsQuery, table); err == nil {
			info.PrimaryKeys, err = queryStrings(ctx, db, pgPrimaryKeysQuery, table)
		}
	case dialect.MySQL:
		if info.Columns, err = queryStrings(ctx, db, mysqlColumnsQuery, table); err == nil {
			info.PrimaryKeys, err = queryStrings(ctx, db, mysqlPrimaryKeysQuery, table)
		}
	default:
		return info, fmt.Errorf("table introspection is not supported for dialect %s", name)
	}
	if err != nil {
		return info, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	if len(info.Columns) == 0 {
		return info, fmt.Errorf("no such table: %s", table)
	}
	return info, nil
}

func describeSQLite(ctx context.Context, db bun.IDB, table string) ([]string, []string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info(?)", bun.Ident(table))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type keyColumn struct {
		name    string
		ordinal int
	}
	var columns []string
	var keys []keyColumn
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             interface{}
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, nil, err
		}
		columns = append(columns, name)
		if pk > 0 {
			keys = append(keys, keyColumn{name: name, ordinal: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].ordinal < keys[j].ordinal })
	primaryKeys := make([]string, len(keys))
	for i, k := range keys {
		primaryKeys[i] = k.name
	}
	return columns, primaryKeys, nil
}

func queryStrings(ctx context.Context, db bun.IDB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
