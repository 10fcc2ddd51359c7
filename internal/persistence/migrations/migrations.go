// Package migrations embeds the goose schema for the SQL key-value backends.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql
var postgres embed.FS

//go:embed sqlite/*.sql
var sqlite embed.FS

// Postgres returns the migrations for the PostgreSQL backend.
func Postgres() fs.FS {
	return sub(postgres, "postgres")
}

// SQLite returns the migrations for the SQLite backend.
func SQLite() fs.FS {
	return sub(sqlite, "sqlite")
}

func sub(fsys embed.FS, dir string) fs.FS {
	out, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return out
}
