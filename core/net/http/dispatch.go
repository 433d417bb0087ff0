package http

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher sends one request per call to endpoints relative to a base URL.
// It holds no per-call state and is safe for concurrent use.
type Dispatcher struct {
	client    *Client
	doer      Doer
	metrics   *Metrics
	baseURL   func() string
	header    map[string]string
	logger    zerolog.Logger
	requestID bool
}

var _ Fetcher = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithHTTPClient executes requests through client
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		d.doer = client
	}
}

// WithDispatchDoer executes requests through doer
func WithDispatchDoer(doer Doer) DispatcherOption {
	return func(d *Dispatcher) {
		d.doer = doer
	}
}

// WithBaseURLFunc resolves the base URL on every call instead of using the
// value given to NewDispatcher
func WithBaseURLFunc(fn func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.baseURL = fn
		}
	}
}

// WithStaticHeader adds headers to every request. Content-Type and
// Access-Control-Allow-Origin cannot be overridden.
func WithStaticHeader(header map[string]string) DispatcherOption {
	return func(d *Dispatcher) {
		maps.Copy(d.header, header)
	}
}

// WithLogger logs each call at debug level. Without it nothing is logged.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithRequestID stamps every request with a fresh X-Request-Id
func WithRequestID() DispatcherOption {
	return func(d *Dispatcher) {
		d.requestID = true
	}
}

// WithMetrics records request counts and latencies in m
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a Dispatcher for endpoints under baseURL
func NewDispatcher(baseURL string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		doer:    &http.Client{},
		baseURL: func() string { return baseURL },
		header:  make(map[string]string),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	doer := d.doer
	if d.metrics != nil {
		doer = d.metrics.Instrument(doer)
	}
	d.client = New(WithDoer(doer))

	return d
}

// Describe builds the descriptor Dispatch would send, without sending it
func (d *Dispatcher) Describe(endpoint, method string, data any) *Descriptor {
	desc := NewDescriptor(d.baseURL(), endpoint, method, data)
	for k, v := range d.header {
		if desc.Header.Get(k) == "" {
			desc.Header.Set(k, v)
		}
	}
	return desc
}

// Dispatch sends data to endpoint with method and returns the decoded JSON body.
//
// GET sends data as query parameters, POST as the JSON body; any other method
// sends no payload. Errors from the transport and from decoding are returned
// unchanged; a non-2xx status yields an *errors.Error carrying the status code.
// Cancellation and deadlines come from ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint, method string, data any) (any, error) {
	var out any
	if err := d.dispatch(ctx, endpoint, method, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch is Dispatch decoding the response body into T
func Fetch[T any](ctx context.Context, d *Dispatcher, endpoint, method string, data any) (T, error) {
	var out T
	if err := d.dispatch(ctx, endpoint, method, data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, endpoint, method string, data, dest any) error {
	desc := d.Describe(endpoint, method, data)
	if data != nil && desc.Payload.Placement == PlacementNone {
		d.logger.Debug().Str("method", method).Str("url", desc.URL).Msg("payload dropped, method carries no payload")
	}

	query, err := desc.Query()
	if err != nil {
		return err
	}

	header := desc.headerMap()
	var requestID string
	if d.requestID {
		requestID = uuid.NewString()
		header[HeaderRequestID] = requestID
	}

	start := time.Now()
	_, err = d.client.Request(desc.Method, desc.URL, desc.Body(),
		WithContext(ctx),
		WithHeader(header),
		WithQuery(query),
		WithResponse(dest),
	)

	ev := d.logger.Debug()
	if requestID != "" {
		ev = ev.Str("request_id", requestID)
	}
	ev.Str("method", desc.Method).
		Str("url", desc.URL).
		Stringer("placement", desc.Payload.Placement).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("dispatch")

	return err
}
