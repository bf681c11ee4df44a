// Package store defines the persistence contract for tasks and the error
// taxonomy every backend maps its failures onto: not found, constraint
// violation and store unavailable. Anything else is unclassified and is
// surfaced as-is. Implementations live under internal/platform.
package store
