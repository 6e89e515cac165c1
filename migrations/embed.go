// Package migrations embeds the SQL schema migrations for every supported backend.
package migrations

import "embed"

// FS holds the migrations, one directory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
