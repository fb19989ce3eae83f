// Package sql embeds the schema migrations applied by the migrate command.
package sql

import "embed"

//go:embed migrations
var Migrations embed.FS
