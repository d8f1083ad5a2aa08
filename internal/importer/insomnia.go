package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Eliptic23/borja/internal/core"
)

// InsomniaImporter imports Insomnia export documents (JSON or YAML).
type InsomniaImporter struct{}

// NewInsomniaImporter creates a new Insomnia importer.
func NewInsomniaImporter() *InsomniaImporter {
	return &InsomniaImporter{}
}

func (i *InsomniaImporter) Name() string {
	return "Insomnia Export"
}

func (i *InsomniaImporter) Format() Format {
	return FormatInsomnia
}

func (i *InsomniaImporter) FileExtensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

func (i *InsomniaImporter) DetectFormat(content []byte) bool {
	doc, err := parseInsomniaDoc(content)
	if err != nil {
		return false
	}
	return doc.Type == "export" && len(doc.Resources) > 0
}

// Import maps an Insomnia export onto internal collection trees. Each
// top-level request group becomes one collection; nesting is rebuilt by
// filtering the flat resource list on parent-identifier equality.
func (i *InsomniaImporter) Import(ctx context.Context, content []byte) ([]*core.Collection, error) {
	doc, err := parseInsomniaDoc(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	if doc.Type != "export" {
		return nil, ErrInvalidFormat
	}

	workspaces := make(map[string]bool)
	for _, res := range doc.Resources {
		if res.Type == "workspace" {
			workspaces[res.ID] = true
		}
	}

	var collections []*core.Collection
	for _, res := range doc.Resources {
		if res.Type != "request_group" {
			continue
		}
		if res.ParentID == "" || workspaces[res.ParentID] {
			collections = append(collections, buildInsomniaGroup(res, doc.Resources))
		}
	}
	return collections, nil
}

func parseInsomniaDoc(content []byte) (*insomniaDoc, error) {
	var doc insomniaDoc
	if err := json.Unmarshal(content, &doc); err == nil {
		return &doc, nil
	}
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func buildInsomniaGroup(group insomniaResource, resources []insomniaResource) *core.Collection {
	coll := core.NewCollection(group.Name)
	coll.SetDescription(group.Description)
	coll.SetAuth(convertInsomniaAuth(group.Authentication))

	for _, res := range resources {
		if res.ParentID != group.ID {
			continue
		}
		switch res.Type {
		case "request_group":
			coll.AddExistingFolder(buildInsomniaGroup(res, resources))
		case "request":
			coll.AddRequest(convertInsomniaRequest(res))
		}
	}
	return coll
}

func convertInsomniaRequest(res insomniaResource) *core.Request {
	req := core.NewRequest(res.Name, res.Method, rewriteTemplates(res.URL))

	for _, h := range res.Headers {
		req.AddHeader(core.Header{
			Key:    rewriteTemplates(h.Name),
			Value:  rewriteTemplates(h.Value),
			Active: !h.Disabled,
		})
	}
	for _, p := range res.Parameters {
		req.AddParam(core.Param{
			Key:    rewriteTemplates(p.Name),
			Value:  rewriteTemplates(p.Value),
			Active: !p.Disabled,
		})
	}

	req.SetAuth(convertInsomniaAuth(res.Authentication))
	req.SetBody(convertInsomniaBody(res.Body))
	return req
}

// convertInsomniaAuth is a closed dispatch: basic, oauth2 and bearer map
// onto their internal counterparts, everything else collapses to none.
// Missing fields become empty strings, not absent values.
func convertInsomniaAuth(auth insomniaAuth) core.AuthConfig {
	switch auth.Type {
	case "basic":
		return core.AuthConfig{
			Type:     core.AuthBasic,
			Active:   true,
			Username: rewriteTemplates(auth.Username),
			Password: rewriteTemplates(auth.Password),
		}
	case "oauth2":
		return core.AuthConfig{
			Type:   core.AuthOAuth2,
			Active: true,
			Token:  rewriteTemplates(auth.AccessToken),
			OAuth2: &core.OAuth2Config{
				GrantType:    "authorization_code",
				AuthURL:      rewriteTemplates(auth.AuthorizationURL),
				TokenURL:     rewriteTemplates(auth.AccessTokenURL),
				ClientID:     rewriteTemplates(auth.ClientID),
				ClientSecret: rewriteTemplates(auth.ClientSecret),
				Scope:        rewriteTemplates(auth.Scope),
			},
		}
	case "bearer":
		return core.AuthConfig{
			Type:   core.AuthBearer,
			Active: true,
			Token:  rewriteTemplates(auth.Token),
		}
	default:
		return core.AuthConfig{Type: core.AuthNone, Active: true}
	}
}

// convertInsomniaBody dispatches on the declared MIME type. Multipart and
// url-encoded forms are rebuilt field by field - url-encoded fields as
// newline-joined "key: value" text. Recognized textual types pass through
// verbatim. Anything else drops the payload: the import still succeeds
// with a nil content type and nil body.
func convertInsomniaBody(body insomniaBody) core.RequestBody {
	switch body.MimeType {
	case "multipart/form-data":
		form := make([]core.FormField, 0, len(body.Params))
		for _, p := range body.Params {
			form = append(form, core.FormField{
				Key:    rewriteTemplates(p.Name),
				Value:  rewriteTemplates(p.Value),
				Active: !p.Disabled,
				IsFile: false,
			})
		}
		ct := body.MimeType
		return core.RequestBody{ContentType: &ct, Form: form}
	case "application/x-www-form-urlencoded":
		lines := make([]string, 0, len(body.Params))
		for _, p := range body.Params {
			lines = append(lines, fmt.Sprintf("%s: %s", rewriteTemplates(p.Name), rewriteTemplates(p.Value)))
		}
		return core.NewRequestBody(body.MimeType, strings.Join(lines, "\n"))
	case "application/json", "application/ld+json", "application/hal+json",
		"application/vnd.api+json", "application/xml", "text/xml",
		"text/html", "text/plain":
		return core.NewRequestBody(body.MimeType, rewriteTemplates(body.Text))
	default:
		return core.RequestBody{}
	}
}

var insomniaTemplate = regexp.MustCompile(`\{\{\s*_\.([^\s{}]+)\s*\}\}`)

// rewriteTemplates converts Insomnia's "{{ _.NAME }}" interpolation syntax
// to the internal "<<NAME>>" form. Applied to every interpolated string
// during mapping.
func rewriteTemplates(s string) string {
	return insomniaTemplate.ReplaceAllString(s, "<<$1>>")
}

// Insomnia export format structures. One flat resource list; tree shape is
// encoded entirely in parentId references.

type insomniaDoc struct {
	Type         string             `json:"_type" yaml:"_type"`
	ExportFormat int                `json:"__export_format" yaml:"__export_format"`
	Resources    []insomniaResource `json:"resources" yaml:"resources"`
}

type insomniaResource struct {
	ID             string         `json:"_id" yaml:"_id"`
	Type           string         `json:"_type" yaml:"_type"`
	ParentID       string         `json:"parentId" yaml:"parentId"`
	Name           string         `json:"name" yaml:"name"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
	Method         string         `json:"method,omitempty" yaml:"method,omitempty"`
	URL            string         `json:"url,omitempty" yaml:"url,omitempty"`
	Headers        []insomniaPair `json:"headers,omitempty" yaml:"headers,omitempty"`
	Parameters     []insomniaPair `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Body           insomniaBody   `json:"body,omitempty" yaml:"body,omitempty"`
	Authentication insomniaAuth   `json:"authentication,omitempty" yaml:"authentication,omitempty"`
}

type insomniaPair struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type insomniaBody struct {
	MimeType string         `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Params   []insomniaPair `json:"params,omitempty" yaml:"params,omitempty"`
}

type insomniaAuth struct {
	Type             string `json:"type,omitempty" yaml:"type,omitempty"`
	Username         string `json:"username,omitempty" yaml:"username,omitempty"`
	Password         string `json:"password,omitempty" yaml:"password,omitempty"`
	Token            string `json:"token,omitempty" yaml:"token,omitempty"`
	AccessToken      string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	AccessTokenURL   string `json:"accessTokenUrl,omitempty" yaml:"accessTokenUrl,omitempty"`
	AuthorizationURL string `json:"authorizationUrl,omitempty" yaml:"authorizationUrl,omitempty"`
	ClientID         string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret     string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	Scope            string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Verify InsomniaImporter implements Importer interface
var _ Importer = (*InsomniaImporter)(nil)
