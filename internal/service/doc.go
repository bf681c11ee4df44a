// Package service contains the application-specific use cases for tasks.
//
// TaskService is the facade the HTTP layer talks to: for each verb it runs
// validation (create and update), delegates to a store.TaskStore, and hands
// back either the resulting task or an error that Classify maps onto exactly
// one Outcome. The facade never retries and never substitutes a default value
// for a failure.
//
// The service layer depends on domain types and the store interface, never
// on a specific backend.
package service
