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
	"time"

	"github.com/tomoncle/datamapper/database"
)

// Option configures a table gateway.
type Option func(*options)

type options struct {
	createdColumn string
	updatedColumn string
	keyStrategy   string
	logger        database.Logger
	clock         func() time.Time
}

func defaultOptions() options {
	ts := database.DefaultConfig().Timestamps
	return options{
		createdColumn: ts.Created,
		updatedColumn: ts.Updated,
		keyStrategy:   database.KeyStrategyAuto,
		logger:        database.GetLogger(),
		clock:         time.Now,
	}
}

// WithTimestamps names the columns stamped on insert and update. An empty
// name or "-" disables that stamp.
func WithTimestamps(created, updated string) Option {
	return func(o *options) {
		o.createdColumn = timestampColumn(created)
		o.updatedColumn = timestampColumn(updated)
	}
}

// WithKeyStrategy selects how a missing single primary key is filled on
// insert: database.KeyStrategyAuto leaves it to the database,
// database.KeyStrategyUUID generates one.
func WithKeyStrategy(strategy string) Option {
	return func(o *options) {
		if strategy != "" {
			o.keyStrategy = strategy
		}
	}
}

func WithLogger(logger database.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now for timestamp stamping.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func timestampColumn(name string) string {
	if name == "-" {
		return ""
	}
	return name
}
