// ABOUTME: Embeds PostgreSQL schema migrations for goose
// ABOUTME: Migration files use numeric prefixes and goose annotations

package migrations

import "embed"

// Migrations holds the embedded SQL migration files.
//
//go:embed *.sql
var Migrations embed.FS
