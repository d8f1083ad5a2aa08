package core

import "github.com/google/uuid"

// RequestBody carries the body payload with its declared content type.
// Both fields are nil when the request has no usable body - an import of
// an unrecognized content type lands here with the payload dropped.
type RequestBody struct {
	ContentType *string     `json:"contentType" yaml:"contentType"`
	Body        *string     `json:"body" yaml:"body"`
	Form        []FormField `json:"form,omitempty" yaml:"form,omitempty"`
}

// FormField is one entry of a multipart form body.
type FormField struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Active bool   `json:"active" yaml:"active"`
	IsFile bool   `json:"isFile" yaml:"isFile"`
}

// IsEmpty reports whether the body carries no payload.
func (b RequestBody) IsEmpty() bool {
	return b.ContentType == nil && b.Body == nil && len(b.Form) == 0
}

// NewRequestBody builds a body from plain strings.
func NewRequestBody(contentType, body string) RequestBody {
	return RequestBody{ContentType: &contentType, Body: &body}
}

// Request is a leaf of the collection tree: a saved HTTP/GraphQL request
// definition.
type Request struct {
	id         string
	name       string
	method     string
	url        string
	headers    []Header
	params     []Param
	body       RequestBody
	auth       AuthConfig
	preScript  string
	postScript string
}

// NewRequest creates a new request definition.
func NewRequest(name, method, url string) *Request {
	return &Request{
		id:     uuid.New().String(),
		name:   name,
		method: method,
		url:    url,
		auth:   AuthConfig{Type: AuthInherit, Active: true},
	}
}

// NewRequestWithID creates a request with a specific ID (for loading from
// storage).
func NewRequestWithID(id, name, method, url string) *Request {
	r := NewRequest(name, method, url)
	r.id = id
	return r
}

func (r *Request) ID() string         { return r.id }
func (r *Request) Name() string       { return r.name }
func (r *Request) Method() string     { return r.method }
func (r *Request) URL() string        { return r.url }
func (r *Request) Headers() []Header  { return r.headers }
func (r *Request) Params() []Param    { return r.params }
func (r *Request) Body() RequestBody  { return r.body }
func (r *Request) Auth() AuthConfig   { return r.auth }
func (r *Request) PreScript() string  { return r.preScript }
func (r *Request) PostScript() string { return r.postScript }

func (r *Request) SetName(name string)     { r.name = name }
func (r *Request) SetMethod(method string) { r.method = method }
func (r *Request) SetURL(url string)       { r.url = url }

func (r *Request) SetHeaders(headers []Header) { r.headers = headers }
func (r *Request) AddHeader(h Header)          { r.headers = append(r.headers, h) }

func (r *Request) SetParams(params []Param) { r.params = params }
func (r *Request) AddParam(p Param)         { r.params = append(r.params, p) }

func (r *Request) SetBody(body RequestBody) { r.body = body }
func (r *Request) SetAuth(auth AuthConfig)  { r.auth = auth }

func (r *Request) SetPreScript(script string)  { r.preScript = script }
func (r *Request) SetPostScript(script string) { r.postScript = script }

// Clone creates a deep copy with the same ID.
func (r *Request) Clone() *Request {
	clone := *r
	clone.headers = append([]Header(nil), r.headers...)
	clone.params = append([]Param(nil), r.params...)
	if r.body.ContentType != nil {
		ct := *r.body.ContentType
		clone.body.ContentType = &ct
	}
	if r.body.Body != nil {
		b := *r.body.Body
		clone.body.Body = &b
	}
	clone.body.Form = append([]FormField(nil), r.body.Form...)
	if r.auth.OAuth2 != nil {
		oc := *r.auth.OAuth2
		clone.auth.OAuth2 = &oc
	}
	return &clone
}
