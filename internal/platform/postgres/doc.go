// Package postgres provides the PostgreSQL implementations of the storage
// interfaces defined in internal/store, together with the embedded goose
// migrations that create their schema. Database errors are translated into
// store sentinels by MapError so callers never see driver types.
package postgres
