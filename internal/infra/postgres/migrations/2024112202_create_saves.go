package migrations

import _ "embed"

//go:embed 0002_create_saves.sql
var createSavesSQL string

func init() {
	Migrations.MustRegister(
		execSQL(createSavesSQL),
		execSQL(`DROP TABLE IF EXISTS saves`),
	)
}
