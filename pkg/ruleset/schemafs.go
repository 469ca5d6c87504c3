package ruleset

import "embed"

// schemaFile is the embedded schema's path within SchemaFS.
const schemaFile = "ruleset-schema.json"

// SchemaFS contains the embedded ruleset JSON schema.
//
//go:embed ruleset-schema.json
var SchemaFS embed.FS
