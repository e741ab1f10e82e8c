package migrations

import "embed"

// FS contains embedded SQLite migrations for property storage.
//
//go:embed *.sql
var FS embed.FS
