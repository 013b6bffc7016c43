// Package store executes compiled collections against a database.
//
// Two drivers are supported:
//   - sqlite3 (github.com/mattn/go-sqlite3), using ":name" parameters
//   - pgx (github.com/jackc/pgx/v5/stdlib), using "$N" parameters
//
// The driver fixes the compilation dialect, so a Store compiles every
// collection it is handed itself.
//
// # Query identity
//
// Every execution is tagged with an id from the store's IDGenerator
// (UUIDv7 by default). The id is logged with the statement, the dialect,
// the row count and the duration, and is carried by QueryError.
//
// # Results
//
// Fetch runs the paged statement: grouping before ordering, the cursor as
// LIMIT and OFFSET. Count runs a COUNT(*) over the same rows without the
// cursor. TEXT values read as []byte are returned as strings.
package store
