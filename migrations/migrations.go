// Package migrations embeds the engine's goose SQL migrations.
package migrations

import "embed"

// FS holds the SQL migration files, applied by Engine.Migrate.
//
//go:embed *.sql
var FS embed.FS
