package migrations

import "embed"

// FS carries the migration sources so goose can resolve the registered Go
// migrations without depending on the process working directory.
//
//go:embed *.go
var FS embed.FS
