// Package migrations embeds the versioned PostgreSQL schema so the migrate
// binary needs no files next to it.
package migrations

import "embed"

// FS holds the NNNNNN_name.{up,down}.sql files
//
//go:embed *.sql
var FS embed.FS
