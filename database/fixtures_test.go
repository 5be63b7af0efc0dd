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
	"database/sql"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func openSQLite(t *testing.T, name string) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSplitStatements(t *testing.T) {
	content := `
-- schema
CREATE TABLE a (
  id INTEGER PRIMARY KEY
);

INSERT INTO a (id) VALUES (1);
INSERT INTO a (id) VALUES (2)
`
	statements, err := SplitStatements(content)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE a ( id INTEGER PRIMARY KEY );",
		"INSERT INTO a (id) VALUES (1);",
		"INSERT INTO a (id) VALUES (2)",
	}, statements)

	statements, err = SplitStatements("-- nothing\n\n")
	require.NoError(t, err)
	assert.Empty(t, statements)
}

func TestSplitStatementsKeepsStringLiterals(t *testing.T) {
	content := "INSERT INTO notes (body) VALUES ('first;\n\n-- kept\n  second');\n" +
		"INSERT INTO notes (body) VALUES ('it''s');\n"

	statements, err := SplitStatements(content)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"INSERT INTO notes (body) VALUES ('first;\n\n-- kept\n  second');",
		"INSERT INTO notes (body) VALUES ('it''s');",
	}, statements)

	_, err = SplitStatements("INSERT INTO notes (body) VALUES ('open;\n")
	assert.ErrorContains(t, err, "unterminated string literal")
}

func TestSplitStatementsLongLines(t *testing.T) {
	long := "INSERT INTO notes (body) VALUES ('" + strings.Repeat("x", 70*1024) + "');"
	content := "CREATE TABLE notes (body TEXT);\n" + long + "\nDELETE FROM notes;\n"

	statements, err := SplitStatements(content)
	require.NoError(t, err)
	require.Len(t, statements, 3)
	assert.Equal(t, long, statements[1])
	assert.Equal(t, "DELETE FROM notes;", statements[2])
}

func TestFixtureFilesOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"common/10_seed.sql":                 {Data: []byte("")},
		"common/02_schema.sql":               {Data: []byte("")},
		"common/readme.md":                   {Data: []byte("")},
		"common/views.sql":                   {Data: []byte("")},
		"environments/test/01_test_data.sql": {Data: []byte("")},
		"environments/prod/01_prod_data.sql": {Data: []byte("")},
	}

	files, err := NewFixtureLoader(nil, fsys, "test").Files()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"02_schema.sql", "10_seed.sql", "views.sql", "01_test_data.sql"}, names)
	assert.Equal(t, 999, files[2].Order)
	assert.Equal(t, "test", files[3].Environment)
}

func TestFixtureLoaderLoad(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, "fixture_load")
	fsys := fstest.MapFS{
		"common/01_schema.sql": {Data: []byte(`
CREATE TABLE colors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL
);`)},
		"common/02_seed.sql": {Data: []byte("INSERT INTO colors (name) VALUES ('red');\nINSERT INTO colors (name) VALUES ('blue');")},
	}

	loader := NewFixtureLoader(db, fsys, "missing-env")
	loader.SetLogger(NopLogger{})
	results, err := loader.Load(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[1].Statements)
	assert.EqualValues(t, 2, results[1].RowsAffected)

	var count int
	require.NoError(t, db.NewSelect().TableExpr("colors").ColumnExpr("COUNT(*)").Scan(ctx, &count))
	assert.Equal(t, 2, count)
}

func TestFixtureLoaderRollsBackFailingFile(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, "fixture_rollback")
	fsys := fstest.MapFS{
		"common/01_schema.sql": {Data: []byte("CREATE TABLE sizes (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"common/02_seed.sql":   {Data: []byte("INSERT INTO sizes (name) VALUES ('s');\nINSERT INTO sizes (name) VALUES (NULL);")},
	}

	loader := NewFixtureLoader(db, fsys, "")
	loader.SetLogger(NopLogger{})
	results, err := loader.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "02_seed.sql")
	assert.Len(t, results, 1)

	var count int
	require.NoError(t, db.NewSelect().TableExpr("sizes").ColumnExpr("COUNT(*)").Scan(ctx, &count))
	assert.Equal(t, 0, count)
}

func TestFixtureLoaderReportsUnterminatedLiteral(t *testing.T) {
	db := openSQLite(t, "fixture_unterminated")
	fsys := fstest.MapFS{
		"common/01_schema.sql": {Data: []byte("CREATE TABLE notes (body TEXT);\nINSERT INTO notes (body) VALUES ('open);\n")},
	}

	loader := NewFixtureLoader(db, fsys, "")
	loader.SetLogger(NopLogger{})
	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01_schema.sql")
	assert.Contains(t, err.Error(), "unterminated string literal")
}
