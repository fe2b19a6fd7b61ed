// Package appfs exposes the app's embedded static files: database migrations,
// email templates and seed data.
package appfs

import "embed"

//go:embed all:migrations all:assets
var FS embed.FS
