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
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/uptrace/bun"
)

const commonFixtures = "common"

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// FixtureLoader executes ordered SQL files to seed data. Files under
// "common" run first, then those under "environments/<environment>".
// Inside a directory files run by their numeric "NN_" prefix, then by name.
type FixtureLoader struct {
	db          *bun.DB
	fsys        fs.FS
	environment string
	logger      Logger
}

// FixtureFile describes a SQL file to be executed.
type FixtureFile struct {
	Path        string
	Name        string
	Order       int
	Environment string
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Duration     time.Duration
	RowsAffected int64
	Statements   int
}

func NewFixtureLoader(db *bun.DB, fsys fs.FS, environment string) *FixtureLoader {
	return &FixtureLoader{
		db:          db,
		fsys:        fsys,
		environment: environment,
		logger:      GetLogger(),
	}
}

func (l *FixtureLoader) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Load runs every fixture file, each in its own transaction, and stops at
// the first failing file.
func (l *FixtureLoader) Load(ctx context.Context) ([]ExecutionResult, error) {
	files, err := l.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to list SQL files: %w", err)
	}
	if len(files) == 0 {
		l.logger.Info("no SQL files found to execute", "environment", l.environment)
		return nil, nil
	}

	results := make([]ExecutionResult, 0, len(files))
	for _, file := range files {
		result, err := l.execute(ctx, file)
		if err != nil {
			l.logger.Error("SQL file execution failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("SQL file execution failed %s: %w", file.Path, err)
		}
		l.logger.Info("SQL file executed",
			"file", result.File,
			"duration", result.Duration.String(),
			"rows_affected", result.RowsAffected,
		)
		results = append(results, result)
	}

	l.logger.Info("SQL initialization completed", "total_files", len(results), "environment", l.environment)
	return results, nil
}

// Files lists the fixture files in execution order.
func (l *FixtureLoader) Files() ([]FixtureFile, error) {
	files, err := l.filesIn(commonFixtures, commonFixtures)
	if err != nil {
		return nil, err
	}
	if l.environment != "" {
		envFiles, err := l.filesIn(path.Join("environments", l.environment), l.environment)
		if err != nil {
			return nil, err
		}
		files = append(files, envFiles...)
	}
	return files, nil
}

func (l *FixtureLoader) filesIn(dir, environment string) ([]FixtureFile, error) {
	var files []FixtureFile
	err := fs.WalkDir(l.fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		files = append(files, FixtureFile{
			Path:        p,
			Name:        d.Name(),
			Order:       fileOrder(d.Name()),
			Environment: environment,
		})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func fileOrder(name string) int {
	if m := fileOrderPattern.FindStringSubmatch(name); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 999
}

func (l *FixtureLoader) execute(ctx context.Context, file FixtureFile) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{File: file.Path}

	content, err := fs.ReadFile(l.fsys, file.Path)
	if err != nil {
		return result, fmt.Errorf("failed to read file: %w", err)
	}

	statements, err := SplitStatements(string(content))
	if err != nil {
		return result, fmt.Errorf("failed to parse file: %w", err)
	}
	result.Statements = len(statements)
	if len(statements) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	err = l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("failed to execute SQL statement: %s: %w", stmt, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.RowsAffected += n
			}
		}
		return nil
	})
	result.Duration = time.Since(start)
	return result, err
}

// SplitStatements splits SQL text on semicolons that end a line outside a
// single-quoted string literal. Blank lines and full-line "--" comments
// outside literals are dropped; line breaks inside a literal are preserved.
func SplitStatements(content string) ([]string, error) {
	var statements []string
	var current strings.Builder
	inString := false

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), max(len(content)+1, bufio.MaxScanTokenSize))
	for scanner.Scan() {
		line := scanner.Text()
		if !inString {
			line = strings.TrimLeftFunc(line, unicode.IsSpace)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
		}
		if strings.Count(line, "'")%2 == 1 {
			inString = !inString
		}
		if inString {
			current.WriteString(line)
			current.WriteString("\n")
			continue
		}
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			flush()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan SQL: %w", err)
	}
	if inString {
		return nil, errors.New("unterminated string literal")
	}
	flush()
	return statements, nil
}
