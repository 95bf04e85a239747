package migrations

import "embed"

// Migration files are embedded at compile time so a single binary can
// bootstrap its own schema without external file dependencies.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
