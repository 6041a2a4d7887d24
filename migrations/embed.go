// Package migrations embeds the SmartHouse SQL schema migrations.
package migrations

import "embed"

// FS holds every migration file at its root.
//
//go:embed *.sql
var FS embed.FS
