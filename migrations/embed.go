// Package migrations содержит SQL схему хранилища PostgreSQL.
package migrations

import "embed"

// FS встроенные миграции; используются, если MIGRATIONS_PATH не задан.
//
//go:embed *.sql
var FS embed.FS
