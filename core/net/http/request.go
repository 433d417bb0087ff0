package http

import (
	"net/http"
	"net/url"
	"strings"
)

// Placement is the request slot a payload is attached to
type Placement int

const (
	// PlacementNone drops the payload
	PlacementNone Placement = iota
	// PlacementQuery encodes the payload as URL query parameters
	PlacementQuery
	// PlacementBody encodes the payload as the JSON request body
	PlacementBody
)

func (p Placement) String() string {
	switch p {
	case PlacementQuery:
		return "query"
	case PlacementBody:
		return "body"
	default:
		return "none"
	}
}

// PlacementFor returns where the payload of a request with method goes.
// The comparison is case-sensitive: only "GET" and "POST" carry a payload.
func PlacementFor(method string) Placement {
	switch method {
	case MethodGet:
		return PlacementQuery
	case MethodPost:
		return PlacementBody
	default:
		return PlacementNone
	}
}

// Payload is caller data tagged with its placement.
// Data is always nil when Placement is PlacementNone.
type Payload struct {
	Placement Placement
	Data      any
}

// Descriptor describes one request before it is executed
type Descriptor struct {
	Method  string
	URL     string
	Header  http.Header
	Payload Payload
}

// NormalizeEndpoint prefixes endpoint with "/" unless it already starts with one
func NormalizeEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") {
		return endpoint
	}
	return "/" + endpoint
}

// NewDescriptor builds the descriptor for a call. The URL is the plain concatenation
// of baseURL and the normalized endpoint; no path cleaning takes place.
func NewDescriptor(baseURL, endpoint, method string, data any) *Descriptor {
	d := &Descriptor{
		Method: method,
		URL:    baseURL + NormalizeEndpoint(endpoint),
		Header: http.Header{},
		Payload: Payload{
			Placement: PlacementFor(method),
		},
	}
	d.Header.Set(HeaderContentType, ContentTypeJSON)
	d.Header.Set(HeaderAllowOrigin, "*")

	if d.Payload.Placement != PlacementNone {
		d.Payload.Data = data
	}
	return d
}

// Query returns the payload encoded as query parameters, or nil when the
// payload is not placed in the query.
func (d *Descriptor) Query() (url.Values, error) {
	if d.Payload.Placement != PlacementQuery {
		return nil, nil
	}
	return EncodeQuery(d.Payload.Data)
}

// Body returns the payload to be sent as the request body, or nil when the
// payload is not placed in the body.
func (d *Descriptor) Body() any {
	if d.Payload.Placement != PlacementBody {
		return nil
	}
	return d.Payload.Data
}

func (d *Descriptor) headerMap() map[string]string {
	m := make(map[string]string, len(d.Header))
	for k := range d.Header {
		m[k] = d.Header.Get(k)
	}
	return m
}
