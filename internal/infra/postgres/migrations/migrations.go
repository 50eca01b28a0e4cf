// Package migrations embeds the Postgres schema as bun SQL migrations.
package migrations

import (
	"embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed *.sql
var sqlMigrations embed.FS

// Migrations holds every schema change, ordered by the version prefix of
// each <version>_<name>.{up,down}.sql file.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.Discover(sqlMigrations); err != nil {
		panic(err)
	}
}
