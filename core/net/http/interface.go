package http

import (
	"context"
	"net/http"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Clienter is the low-level request surface of Client
type Clienter interface {
	Request(method, url string, body any, opts ...func(*RequestOption)) (*http.Response, error)
}

// Fetcher is the request dispatcher surface of Dispatcher
type Fetcher interface {
	Dispatch(ctx context.Context, endpoint, method string, data any) (any, error)
}
