//go:build integration

// Package testdb provides utilities for PostgreSQL integration tests.
//
// Tests in this package's consumers are compiled only with the integration
// build tag and skip themselves when no database is configured:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.ResetTasks(t, db)
//	    ...
//	}
//
// # Environment Variables
//
//   - DATABASE_URL: connection string for the test database
//   - TASKTRACK_TEST_DB_URL: fallback when DATABASE_URL is unset
//
// The schema is applied with the same embedded goose migrations the server
// runs at startup.
package testdb
