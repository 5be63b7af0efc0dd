// Package repository provides the table gateway used by services: row
// selection with equality filters and pagination, primary-key reads and
// writes of rows as maps, and table introspection, built on bun.
package repository
