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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
connection:
  type: sqlite
  dsn: "file:config_test?mode=memory&cache=shared"
  slow_query_time: 500ms
tables:
  - name: products
    primary_keys: [id]
    columns: [id, name, created_on, updated_on]
  - name: product_colors
    key_strategy: uuid
    primary_keys: [id]
logging:
  level: debug
data_init:
  environment: test
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datamapper.yaml", sampleConfig)

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.ConnectionConfig.Type)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectionConfig.SlowQueryTime)
	assert.Equal(t, 100, cfg.ConnectionConfig.MaxOpenConns, "defaults survive partial yaml")
	require.Len(t, cfg.Tables, 2)
	assert.Equal(t, []string{"id"}, cfg.Tables[0].PrimaryKeys)
	assert.True(t, cfg.Tables[0].Complete())
	assert.False(t, cfg.Tables[1].Complete())
	assert.Equal(t, "created_on", cfg.Timestamps.Created)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "test", cfg.DataInitConfig.Environment)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "datamapper.yaml", sampleConfig)
	envFile := writeFile(t, dir, "test.env", "DB_MAX_OPEN_CONNS=7\n")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_CONN_MAX_LIFETIME", "2m")

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("DB_MAX_OPEN_CONNS") })

	assert.Equal(t, "db.internal", cfg.ConnectionConfig.Host)
	assert.Equal(t, 7, cfg.ConnectionConfig.MaxOpenConns)
	assert.Equal(t, 2*time.Minute, cfg.ConnectionConfig.ConnMaxLifetime)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidateAggregatesProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = "oracle"
	cfg.Tables = []TableConfig{
		{Name: ""},
		{Name: "products", PrimaryKeys: []string{"id"}, Columns: []string{"name"}},
		{Name: "products"},
		{Name: "colors", PrimaryKeys: []string{"a", "b"}, KeyStrategy: KeyStrategyUUID},
		{Name: "sizes", KeyStrategy: "sequence"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unsupported database type")
	assert.Contains(t, msg, "tables[0]: name is required")
	assert.Contains(t, msg, "primary key id is not a declared column")
	assert.Contains(t, msg, "declared more than once")
	assert.Contains(t, msg, "uuid keys need a single primary key")
	assert.Contains(t, msg, "unknown key strategy")
}

func TestValidateAcceptsSupportedTypes(t *testing.T) {
	for _, typ := range []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"} {
		cfg := DefaultConfig()
		cfg.ConnectionConfig.Type = typ
		assert.NoError(t, cfg.Validate(), typ)
	}
}
