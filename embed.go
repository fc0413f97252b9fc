// Package gymapp holds assets embedded into the gymapp binaries.
package gymapp

import "embed"

// Migrations contains the SQL migrations for every storage backend, under
// migrations/postgres and migrations/sqlite.
//
//go:embed migrations
var Migrations embed.FS
