package db

import "gorm.io/gorm"

// Schema every ledger table lives in.
const Schema = "ledger"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
