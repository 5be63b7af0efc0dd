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
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datamapper/utils"
)

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, fixtures, health checks and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	config  *Config
	tables  TableRegistry
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
		tables: NewTableRegistry(),
	}
}

// CreateFromConfig validates cfg, applies its logging settings and builds
// the database manager. The connection is not opened yet.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *Config) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	if cfg.Logging.Format != "" {
		utils.ConfigureConsoleLogFormat(cfg.Logging.Format)
	}
	if cfg.Logging.Level != "" {
		utils.ConfigureLogLevel(cfg.Logging.Level)
	}

	manager := NewDatabaseManager(&cfg.ConnectionConfig)
	manager.SetLogger(f.logger)

	f.config = cfg
	f.manager = manager
	f.tables = NewTableRegistry(cfg.Tables...)
	return manager, nil
}

// InitializeDatabase connects and, when configured, loads SQL fixtures from
// DataInitConfig.Filepath.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if f.config.DataInitConfig.AutoInitOnStartup {
		if _, err := f.LoadFixtures(ctx, os.DirFS(f.config.DataInitConfig.Filepath)); err != nil {
			return fmt.Errorf("failed to initialize data: %w", err)
		}
	}
	f.logger.Info("database initialization completed")
	return nil
}

// LoadFixtures runs the SQL files in fsys for the configured environment.
func (f *BaseDatabaseFactory) LoadFixtures(ctx context.Context, fsys fs.FS) ([]ExecutionResult, error) {
	db := f.GetDB()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	env := ""
	if f.config != nil {
		env = f.config.DataInitConfig.Environment
	}
	loader := NewFixtureLoader(db, fsys, env)
	loader.SetLogger(f.logger)
	return loader.Load(ctx)
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the bun database instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// Tables returns the tables declared in the configuration.
func (f *BaseDatabaseFactory) Tables() TableRegistry {
	return f.tables
}

// Config returns the configuration the factory was created from.
func (f *BaseDatabaseFactory) Config() *Config {
	return f.config
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			LastError:     "database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
