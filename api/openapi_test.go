package api

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 校验嵌入的 OpenAPI 文档本身合法，且覆盖全部 JSON API 路由
func TestOpenAPIDocument(t *testing.T) {
	data, err := OpenAPIFS.ReadFile("openapi/openapi.yaml")
	require.NoError(t, err)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(loader.Context))

	routes := []string{
		"/api/auth/signup",
		"/api/auth/login",
		"/api/auth/logout",
		"/api/articles",
		"/api/articles/{id}",
		"/api/articles/{id}/attachments",
		"/api/articles/{id}/attachments/{att}",
		"/api/users",
		"/api/users/{id}",
	}
	for _, route := range routes {
		assert.NotNil(t, doc.Paths.Find(route), "missing path %s", route)
	}

	for _, schema := range []string{"Article", "Attachment", "User", "AuthResponse"} {
		assert.Contains(t, doc.Components.Schemas, schema)
	}
}
