// Package database owns the GORM connection and schema migration.
// Per-table operations live in the subpackages (users, audit).
package database
