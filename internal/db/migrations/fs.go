// Package migrations embeds the goose SQL migrations for template storage.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
