// Package postgres implements the store interfaces on PostgreSQL, reached
// through database/sql with the pgx driver. Topical labels and shown
// formats are stored as JSONB so the row shape survives schema-free label
// sets.
package postgres
