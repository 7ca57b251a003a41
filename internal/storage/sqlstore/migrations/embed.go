// Package migrations holds the embedded schema migrations for each SQL dialect.
package migrations

import "embed"

// FS contains one directory of numbered .sql files per dialect.
//
//go:embed sqlite/*.sql mysql/*.sql
var FS embed.FS
