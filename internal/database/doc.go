// Package database implements the document store contracts on PostgreSQL.
// Counter updates are single-statement atomic increments; the one-vote-per-
// identity rule is a unique index, not application locking.
package database
