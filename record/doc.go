// Package record provides the data object used to carry table rows
// (Object), the lazily-materializing result set returned by fetch finders
// (Set), and helpers to decode records into typed structs.
package record
