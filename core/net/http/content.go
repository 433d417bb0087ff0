package http

// Common Content-Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain"
)

// Header names set on every dispatched request
const (
	HeaderContentType = "Content-Type"
	HeaderAllowOrigin = "Access-Control-Allow-Origin"
	HeaderRequestID   = "X-Request-Id"
)

// HTTP methods
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)
