// Package api holds the OpenAPI description of the ArtMap HTTP API.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml, compiled into the binary so /docs works from
// any working directory.
//
//go:embed openapi.yaml
var OpenAPI []byte
