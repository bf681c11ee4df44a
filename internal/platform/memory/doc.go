// Package memory provides an in-process implementation of store.TaskStore.
// It backs the "memory" store backend and serves as the reference fake for
// service and handler tests.
package memory
