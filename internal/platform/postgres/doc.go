// Package postgres provides the PostgreSQL implementation of the task store
// defined in the internal/store package. It handles opening the connection
// pool, applying the embedded goose migrations, query execution, and mapping
// between tasks and database rows, including the translation of driver
// failures into the store error taxonomy.
package postgres
