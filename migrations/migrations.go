package migrations

import "embed"

// Embedded schema migrations, one directory per dialect.
// Files apply in filename order.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
