// Package account embeds the goose migrations of the account bounded context.
package account

import "embed"

const VersionTable = "goose_account_versions"

//go:embed *.sql
var FS embed.FS
