package core

// Auth types. A collection whose auth is AuthInherit takes its effective
// auth from the nearest ancestor carrying anything else.
const (
	AuthInherit = "inherit"
	AuthNone    = "none"
	AuthBasic   = "basic"
	AuthBearer  = "bearer"
	AuthOAuth2  = "oauth-2"
	AuthAPIKey  = "api-key"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Type   string `json:"authType" yaml:"authType"`
	Active bool   `json:"authActive" yaml:"authActive"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty" yaml:"token,omitempty"`

	// API key placement: header or query.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
	In  string `json:"in,omitempty" yaml:"in,omitempty"`

	OAuth2 *OAuth2Config `json:"oauth2,omitempty" yaml:"oauth2,omitempty"`
}

// OAuth2Config holds OAuth 2.0 authorization-code flow configuration.
type OAuth2Config struct {
	GrantType    string `json:"grantType,omitempty" yaml:"grantType,omitempty"`
	AuthURL      string `json:"authUrl,omitempty" yaml:"authUrl,omitempty"`
	TokenURL     string `json:"tokenUrl,omitempty" yaml:"tokenUrl,omitempty"`
	ClientID     string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	Scope        string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// IsInherit reports whether the config defers to an ancestor.
func (a AuthConfig) IsInherit() bool {
	return a.Type == "" || a.Type == AuthInherit
}
