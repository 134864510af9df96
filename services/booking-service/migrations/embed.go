// Package migrations embeds the booking-service schema so it can be applied at boot
// (DB_MIGRATE_ON_START) or by tooling.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
