// Package postgres contains PostgreSQL implementations of the store
// interfaces. Each store takes a store.DBTX so it can run against either the
// connection pool or a transaction, and maps database errors onto the store
// sentinel errors via MapError.
package postgres
