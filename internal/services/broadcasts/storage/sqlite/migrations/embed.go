package migrations

import "embed"

// FS contains embedded SQLite migrations for broadcast storage.
//
//go:embed *.sql
var FS embed.FS
