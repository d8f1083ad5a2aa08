package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eliptic23/borja/internal/core"
)

const insomniaBasicAuthDoc = `{
	"_type": "export",
	"__export_format": 4,
	"resources": [
		{"_id": "wrk_1", "_type": "workspace", "name": "Workspace"},
		{"_id": "fld_1", "_type": "request_group", "parentId": "wrk_1", "name": "My Group"},
		{
			"_id": "req_1", "_type": "request", "parentId": "fld_1",
			"name": "Login", "method": "POST", "url": "https://api.example.com/login",
			"authentication": {"type": "basic"}
		}
	]
}`

func importOne(t *testing.T, content string) *core.Collection {
	t.Helper()
	imp := NewInsomniaImporter()
	colls, err := imp.Import(context.Background(), []byte(content))
	require.NoError(t, err)
	require.Len(t, colls, 1)
	return colls[0]
}

func TestImportBasicAuthDefaults(t *testing.T) {
	coll := importOne(t, insomniaBasicAuthDoc)
	assert.Equal(t, "My Group", coll.Name())

	require.Len(t, coll.Requests(), 1)
	auth := coll.Requests()[0].Auth()
	assert.Equal(t, core.AuthBasic, auth.Type)
	assert.True(t, auth.Active)
	assert.Equal(t, "", auth.Username)
	assert.Equal(t, "", auth.Password)
}

func TestImportUnknownMimeDropsBody(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "Odd", "method": "POST", "url": "https://example.com",
				"body": {"mimeType": "application/octet-stream", "text": "binary"}
			}
		]
	}`
	coll := importOne(t, doc)

	body := coll.Requests()[0].Body()
	assert.Nil(t, body.ContentType)
	assert.Nil(t, body.Body)
}

func TestImportNestedGroupsAndOrder(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "Top"},
			{"_id": "fld_2", "_type": "request_group", "parentId": "fld_1", "name": "Inner"},
			{"_id": "req_1", "_type": "request", "parentId": "fld_2", "name": "One", "method": "GET", "url": "https://a"},
			{"_id": "req_2", "_type": "request", "parentId": "fld_1", "name": "Two", "method": "GET", "url": "https://b"},
			{"_id": "req_3", "_type": "request", "parentId": "fld_1", "name": "Three", "method": "GET", "url": "https://c"}
		]
	}`
	coll := importOne(t, doc)

	require.Len(t, coll.Folders(), 1)
	assert.Equal(t, "Inner", coll.Folders()[0].Name())
	assert.Equal(t, "One", coll.Folders()[0].Requests()[0].Name())

	require.Len(t, coll.Requests(), 2)
	assert.Equal(t, "Two", coll.Requests()[0].Name())
	assert.Equal(t, "Three", coll.Requests()[1].Name())
}

func TestImportURLEncodedBodyAsText(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "Form", "method": "POST", "url": "https://example.com",
				"body": {
					"mimeType": "application/x-www-form-urlencoded",
					"params": [
						{"name": "user", "value": "alice"},
						{"name": "role", "value": "admin"}
					]
				}
			}
		]
	}`
	coll := importOne(t, doc)

	body := coll.Requests()[0].Body()
	require.NotNil(t, body.ContentType)
	assert.Equal(t, "application/x-www-form-urlencoded", *body.ContentType)
	assert.Equal(t, "user: alice\nrole: admin", *body.Body)
}

func TestImportMultipartForm(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "Upload", "method": "POST", "url": "https://example.com",
				"body": {
					"mimeType": "multipart/form-data",
					"params": [
						{"name": "file", "value": "x"},
						{"name": "note", "value": "y", "disabled": true}
					]
				}
			}
		]
	}`
	coll := importOne(t, doc)

	body := coll.Requests()[0].Body()
	require.Len(t, body.Form, 2)
	assert.True(t, body.Form[0].Active)
	assert.False(t, body.Form[1].Active)
	assert.Nil(t, body.Body)
}

func TestImportTemplateRewrite(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "Templated", "method": "GET",
				"url": "{{ _.baseUrl }}/users",
				"headers": [{"name": "Authorization", "value": "Bearer {{ _.token }}"}],
				"body": {"mimeType": "application/json", "text": "{\"host\": \"{{_.host}}\"}"}
			}
		]
	}`
	coll := importOne(t, doc)

	req := coll.Requests()[0]
	assert.Equal(t, "<<baseUrl>>/users", req.URL())
	assert.Equal(t, "Bearer <<token>>", req.Headers()[0].Value)
	assert.Equal(t, `{"host": "<<host>>"}`, *req.Body().Body)
}

func TestImportYAMLDocument(t *testing.T) {
	doc := `
_type: export
__export_format: 4
resources:
  - _id: fld_1
    _type: request_group
    name: YAML Group
  - _id: req_1
    _type: request
    parentId: fld_1
    name: Ping
    method: GET
    url: https://example.com/ping
    authentication:
      type: bearer
      token: "{{ _.apiKey }}"
`
	coll := importOne(t, doc)
	assert.Equal(t, "YAML Group", coll.Name())

	auth := coll.Requests()[0].Auth()
	assert.Equal(t, core.AuthBearer, auth.Type)
	assert.Equal(t, "<<apiKey>>", auth.Token)
}

func TestImportOAuth2Renamed(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "OAuth", "method": "GET", "url": "https://example.com",
				"authentication": {
					"type": "oauth2",
					"authorizationUrl": "https://auth.example.com/authorize",
					"accessTokenUrl": "https://auth.example.com/token",
					"clientId": "cid"
				}
			}
		]
	}`
	coll := importOne(t, doc)

	auth := coll.Requests()[0].Auth()
	assert.Equal(t, "oauth-2", auth.Type)
	require.NotNil(t, auth.OAuth2)
	assert.Equal(t, "authorization_code", auth.OAuth2.GrantType)
	assert.Equal(t, "https://auth.example.com/authorize", auth.OAuth2.AuthURL)
	assert.Equal(t, "cid", auth.OAuth2.ClientID)
	assert.Equal(t, "", auth.OAuth2.ClientSecret)
}

func TestImportUnknownAuthBecomesNone(t *testing.T) {
	doc := `{
		"_type": "export",
		"resources": [
			{"_id": "fld_1", "_type": "request_group", "name": "G"},
			{
				"_id": "req_1", "_type": "request", "parentId": "fld_1",
				"name": "R", "method": "GET", "url": "https://example.com",
				"authentication": {"type": "netrc"}
			}
		]
	}`
	coll := importOne(t, doc)
	assert.Equal(t, core.AuthNone, coll.Requests()[0].Auth().Type)
}

func TestDetectFormat(t *testing.T) {
	imp := NewInsomniaImporter()
	assert.True(t, imp.DetectFormat([]byte(insomniaBasicAuthDoc)))
	assert.False(t, imp.DetectFormat([]byte(`{"info": {"schema": "postman"}}`)))
	assert.False(t, imp.DetectFormat([]byte("not a document")))
}

func TestImportAllCollectsPerDocumentFailures(t *testing.T) {
	reg := DefaultRegistry()
	results := reg.ImportAll(context.Background(), FormatInsomnia, [][]byte{
		[]byte(insomniaBasicAuthDoc),
		[]byte("{broken"),
	})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Result.Collections, 1)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Result)
}

func TestRegistryAutoDetect(t *testing.T) {
	reg := DefaultRegistry()
	res, err := reg.Import(context.Background(), FormatAuto, []byte(insomniaBasicAuthDoc))
	require.NoError(t, err)
	assert.Equal(t, FormatInsomnia, res.SourceFormat)

	_, err = reg.Import(context.Background(), FormatAuto, []byte(`{"hello": 1}`))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
