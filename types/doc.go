// Package types holds small value types shared by the repository and the
// services: equality filters, page requests, paginated results and JSON
// column values.
package types
