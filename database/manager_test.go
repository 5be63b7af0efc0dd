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
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(name string) *Config {
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DSN = "file:" + name + "?mode=memory&cache=shared"
	cfg.ConnectionConfig.MaxOpenConns = 4
	return cfg
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig("manager_lifecycle")
	manager := NewDatabaseManager(&cfg.ConnectionConfig)
	manager.SetLogger(NopLogger{})

	assert.Error(t, manager.Ping(ctx))
	assert.False(t, manager.HealthCheck(ctx).Healthy)

	require.NoError(t, manager.Connect(ctx))
	require.NoError(t, manager.Connect(ctx), "connect is idempotent")
	require.NotNil(t, manager.GetDB())
	assert.NoError(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 4, status.MaxOpenConns)
	assert.Equal(t, 4, manager.GetStats().MaxOpenConns)

	require.NoError(t, manager.Disconnect())
	assert.Nil(t, manager.GetDB())
	assert.Error(t, manager.Ping(ctx))
	assert.Equal(t, &DBStats{}, manager.GetStats())
	assert.NoError(t, manager.Disconnect())
}

func TestManagerUnsupportedType(t *testing.T) {
	manager := NewDatabaseManager(&ConnectionConfig{Type: "oracle"})
	manager.SetLogger(NopLogger{})
	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestDriverFor(t *testing.T) {
	cfg := &ConnectionConfig{Type: "postgres", Username: "u", Password: "p", Host: "h", Port: 5432, DBName: "d"}
	driver, dsn, _, err := driverFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable&connect_timeout=0", dsn)

	cfg = &ConnectionConfig{Type: "mysql", DSN: "root@tcp(localhost)/app"}
	driver, dsn, _, err = driverFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Equal(t, "root@tcp(localhost)/app", dsn)

	_, dsn, _, err = driverFor(&ConnectionConfig{Type: "sqlite3", DBName: "app"})
	require.NoError(t, err)
	assert.Equal(t, "app.db", dsn)
}

func TestFactory(t *testing.T) {
	ctx := context.Background()
	f := NewDatabaseFactory()
	f.SetLogger(NopLogger{})

	_, err := f.CreateFromConfig(nil)
	assert.Error(t, err)
	assert.Error(t, f.InitializeDatabase(ctx))
	assert.Nil(t, f.GetDB())
	assert.False(t, f.GetHealthStatus(ctx).Healthy)

	cfg := sqliteConfig("factory")
	cfg.Tables = []TableConfig{{Name: "products", PrimaryKeys: []string{"id"}}}
	_, err = f.CreateFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, f.InitializeDatabase(ctx))
	t.Cleanup(func() { _ = f.Close() })

	table, ok := f.Tables().Lookup("products")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)
	assert.True(t, f.GetHealthStatus(ctx).Healthy)

	fsys := fstest.MapFS{
		"common/01_schema.sql": {Data: []byte("CREATE TABLE factory_items (id INTEGER PRIMARY KEY, name TEXT);")},
	}
	results, err := f.LoadFixtures(ctx, fsys)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestGlobalDB(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "common/01_schema.sql", "CREATE TABLE global_items (id INTEGER PRIMARY KEY, name TEXT);")
	writeFile(t, dir, "environments/test/01_seed.sql", "INSERT INTO global_items (name) VALUES ('a');")

	cfg := sqliteConfig("global_db")
	cfg.DataInitConfig = DataInitConfig{AutoInitOnStartup: true, Filepath: dir, Environment: "test"}

	assert.Nil(t, GetDB())
	assert.False(t, GetHealthStatus(ctx).Healthy)
	_, err := InitData(ctx)
	assert.Error(t, err)

	db, err := InitDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })
	assert.Same(t, db, GetDB())
	assert.True(t, GetHealthStatus(ctx).Healthy)

	var count int
	require.NoError(t, db.NewSelect().TableExpr("global_items").ColumnExpr("COUNT(*)").Scan(ctx, &count))
	assert.Equal(t, 1, count)

	require.NoError(t, CloseDB())
	assert.Nil(t, GetDB())
	assert.Equal(t, &DBStats{}, GetDatabaseStats())
}
