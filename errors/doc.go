// Package errors defines the error kinds returned by records, result sets,
// finders and services. Each kind has a sentinel usable with errors.Is and a
// typed error carrying the offending field, index or operation.
package errors
