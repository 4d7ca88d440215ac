// Package authz is the concurrency-safe entry point to the permission
// matrix. A Service ties together the in-memory Matrix, the catalog that
// gives node ids their ancestry, a MatrixStore that persists every change,
// and the audit trail.
//
// Reads take a shared lock and run concurrently. Mutations are applied to
// the matrix, persisted, and rolled back in memory if persistence fails.
package authz
