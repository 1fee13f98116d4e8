package migrations

import _ "embed"

//go:embed 0001_create_contents.sql
var createContentsSQL string

func init() {
	Migrations.MustRegister(
		execSQL(createContentsSQL),
		execSQL(`DROP TABLE IF EXISTS contents`),
	)
}
