// Package api 嵌入 OpenAPI 文档
package api

import "embed"

//go:embed openapi/*.yaml
var OpenAPIFS embed.FS
