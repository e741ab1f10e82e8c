package migrations

import "embed"

// FS contains embedded SQLite migrations for assessment storage.
//
//go:embed *.sql
var FS embed.FS
