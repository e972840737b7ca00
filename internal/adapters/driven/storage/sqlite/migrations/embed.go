// Package migrations embeds the schema migration files for the corpus
// database.
package migrations

import "embed"

// FS contains the SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
