// Package item embeds the goose migrations of the item bounded context.
package item

import "embed"

// VersionTable keeps this context's goose history apart from other contexts
// sharing the database.
const VersionTable = "goose_item_versions"

//go:embed *.sql
var FS embed.FS
