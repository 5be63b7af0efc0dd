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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Supported key strategies for TableConfig.KeyStrategy.
const (
	KeyStrategyAuto = "auto"
	KeyStrategyUUID = "uuid"
)

var supportedTypes = []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"}

// ConnectionConfig describes how to connect to a database and tune its pool.
// Every field can be overridden from a DB_* environment variable.
type ConnectionConfig struct {
	Type            string        `json:"type" yaml:"type" envconfig:"TYPE"` // postgres、mysql、sqlite
	Host            string        `json:"host" yaml:"host" envconfig:"HOST"`
	Port            int           `json:"port" yaml:"port" envconfig:"PORT"`
	Username        string        `json:"username" yaml:"username" envconfig:"USERNAME"`
	Password        string        `json:"password" yaml:"password" envconfig:"PASSWORD"`
	DBName          string        `json:"dbname" yaml:"dbname" envconfig:"NAME"`
	DSN             string        `json:"dsn" yaml:"dsn" envconfig:"DSN"`
	SSLMode         string        `json:"sslmode" yaml:"sslmode" envconfig:"SSLMODE"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME"`
	ConnectTimeout  time.Duration `json:"connect_timeout" yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	EnableQueryLog  bool          `json:"enable_query_log" yaml:"enable_query_log" envconfig:"ENABLE_QUERY_LOG"`
	SlowQueryTime   time.Duration `json:"slow_query_time" yaml:"slow_query_time" envconfig:"SLOW_QUERY_TIME"`
}

// TableConfig declares a table gateway. Primary keys and columns may be left
// empty, in which case they are introspected from the database.
type TableConfig struct {
	Name        string   `json:"name" yaml:"name"`
	PrimaryKeys []string `json:"primary_keys" yaml:"primary_keys"`
	Columns     []string `json:"columns" yaml:"columns"`
	KeyStrategy string   `json:"key_strategy" yaml:"key_strategy"`
}

// Complete reports whether both primary keys and columns are declared.
func (t TableConfig) Complete() bool {
	return len(t.PrimaryKeys) > 0 && len(t.Columns) > 0
}

// TimestampConfig names the columns stamped on insert and update. A column
// is only stamped when the table has it; "-" disables stamping.
type TimestampConfig struct {
	Created string `json:"created" yaml:"created"`
	Updated string `json:"updated" yaml:"updated"`
}

// LoggingConfig controls the console loggers.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
}

// DataInitConfig controls SQL fixture loading on startup.
type DataInitConfig struct {
	AutoInitOnStartup bool   `json:"auto_init_on_startup" yaml:"auto_init_on_startup"`
	Filepath          string `json:"filepath" yaml:"filepath"`
	Environment       string `json:"environment" yaml:"environment"`
}

// Config aggregates connection, table, logging and data initialization settings.
type Config struct {
	ConnectionConfig ConnectionConfig `json:"connection_config" yaml:"connection"`
	Tables           []TableConfig    `json:"tables" yaml:"tables"`
	Timestamps       TimestampConfig  `json:"timestamps" yaml:"timestamps"`
	Logging          LoggingConfig    `json:"logging" yaml:"logging"`
	DataInitConfig   DataInitConfig   `json:"data_init_config" yaml:"data_init"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		EnableQueryLog:  false,
		SlowQueryTime:   time.Second * 2,
	}
}

// DefaultConfig returns a Config with default connection settings and the
// created_on/updated_on timestamp columns.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		Timestamps: TimestampConfig{
			Created: "created_on",
			Updated: "updated_on",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		DataInitConfig: DataInitConfig{
			Filepath:    "configs/sql",
			Environment: "prod",
		},
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig, loads
// the given dotenv files (".env" when none are given, silently skipped if
// missing) and applies DB_* environment overrides. An empty path skips the
// YAML step.
func LoadConfig(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("DB", &cfg.ConnectionConfig); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the connection type and every table declaration and
// reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !isSupportedType(c.ConnectionConfig.Type) {
		result = multierror.Append(result, fmt.Errorf("unsupported database type: %q, supported types: %v", c.ConnectionConfig.Type, supportedTypes))
	}

	seen := make(map[string]struct{}, len(c.Tables))
	for i, table := range c.Tables {
		if table.Name == "" {
			result = multierror.Append(result, fmt.Errorf("tables[%d]: name is required", i))
			continue
		}
		if _, dup := seen[table.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("table %s: declared more than once", table.Name))
		}
		seen[table.Name] = struct{}{}
		if err := table.validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (t TableConfig) validate() error {
	var result *multierror.Error

	switch t.KeyStrategy {
	case "", KeyStrategyAuto:
	case KeyStrategyUUID:
		if len(t.PrimaryKeys) > 1 {
			result = multierror.Append(result, fmt.Errorf("table %s: uuid keys need a single primary key, got %v", t.Name, t.PrimaryKeys))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("table %s: unknown key strategy %q", t.Name, t.KeyStrategy))
	}

	if len(t.Columns) > 0 {
		cols := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			cols[c] = struct{}{}
		}
		for _, pk := range t.PrimaryKeys {
			if _, ok := cols[pk]; !ok {
				result = multierror.Append(result, fmt.Errorf("table %s: primary key %s is not a declared column", t.Name, pk))
			}
		}
	}

	return result.ErrorOrNil()
}

func isSupportedType(typ string) bool {
	for _, t := range supportedTypes {
		if typ == t {
			return true
		}
	}
	return false
}
