// Package datamapper maps table rows to record objects. A Registry hands out
// one Service per table; a Service answers finder operations such as
// "findByName" or "fetchByProductIdAndColor" with lazily materialized result
// sets and persists objects through a bun table gateway.
package datamapper
