// Package api embeds the OpenAPI description of the HTTP interface.
package api

import _ "embed"

// OpenAPISpec is the raw OpenAPI 3 document in YAML.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
