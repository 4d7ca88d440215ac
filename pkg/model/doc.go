// Package model defines the database models for dbperm.
//
// # Tables
//
//   - roles: one row per role with its default level
//   - permission_overrides: explicit levels keyed by role, node kind and node id
//
// Levels and node kinds are stored by name ("Read", "table") so the tables
// stay readable from psql.
package model
