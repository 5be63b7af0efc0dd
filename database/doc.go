// Package database provides configuration loading, connection management for
// mysql, postgres and sqlite on top of bun, query logging hooks, SQL error
// classification, declared-table registration and SQL fixture loading.
package database
