// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The schema is created by the migrations in pkg/db.
package gorm
