// Package finder parses finder operation names such as "findByName" or
// "fetchByProductIdAndColor" and executes them as conjunctive equality
// queries through a table gateway.
package finder
