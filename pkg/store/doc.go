// Package store provides storage abstractions for the permission matrix.
//
// The authz service keeps the matrix in memory and writes every change
// through a MatrixStore, so the matrix survives restarts when a database
// is configured. Memory is the default implementation; the gorm
// subpackage persists to PostgreSQL.
//
// # Usage
//
//	s := gormstore.NewMatrixStore(db)
//	roles, err := s.LoadRoles(ctx)
package store
