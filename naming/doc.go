// Package naming translates between the camelCase names used by callers and
// the snake_case names used for columns and tables.
package naming
