package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net/http"
	"net/url"
	"sync"

	kerrors "github.com/kochabx/fetchapi/errors"
)

const (
	// Buffer pool constants
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024 // 1MB

	// maxErrorBody caps how much of a failed response is kept on the error
	maxErrorBody = 64 * 1024
)

// Client executes JSON HTTP requests through a Doer, pooling request options and encode buffers
type Client struct {
	doer           Doer
	requestOptPool sync.Pool
	bufferPool     sync.Pool
}

var _ Clienter = (*Client)(nil)

var errTrailingData = errors.New("invalid character after top-level JSON value")

// Option configures the HTTP client
type Option func(*Client)

// WithClient sets a custom HTTP client
func WithClient(client *http.Client) Option {
	return func(h *Client) {
		h.doer = client
	}
}

// WithDoer sets the executor used for every request
func WithDoer(doer Doer) Option {
	return func(h *Client) {
		h.doer = doer
	}
}

// New creates a Client. Without options requests go through a zero http.Client.
func New(opts ...Option) *Client {
	h := &Client{
		doer: &http.Client{},
		requestOptPool: sync.Pool{
			New: func() any {
				return &RequestOption{
					header: make(map[string]string, 8),
				}
			},
		},
		bufferPool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
			},
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RequestOption holds options for individual HTTP requests
type RequestOption struct {
	ctx      context.Context
	header   map[string]string
	query    url.Values
	response any
}

// WithContext sets the context the request is bound to
func WithContext(ctx context.Context) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.ctx = ctx
	}
}

// WithHeader sets multiple headers for the request
func WithHeader(header map[string]string) func(*RequestOption) {
	return func(opt *RequestOption) {
		maps.Copy(opt.header, header)
	}
}

// WithQuery appends query parameters to the request URL
func WithQuery(query url.Values) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.query = query
	}
}

// WithResponse sets the target the JSON response body is decoded into.
// An empty body leaves the target untouched.
func WithResponse(response any) func(*RequestOption) {
	return func(opt *RequestOption) {
		opt.response = response
	}
}

func (opt *RequestOption) reset() {
	opt.ctx = nil
	clear(opt.header)
	opt.header[HeaderContentType] = ContentTypeJSON
	opt.query = nil
	opt.response = nil
}

// Request sends an HTTP request with the specified method, URL, and body.
//
// Transport and decoding errors are returned as produced. A response outside the
// 2xx range yields an *errors.Error whose code is the status code and whose metadata
// holds the method, url, status and (truncated) response body.
func (cli *Client) Request(method, rawURL string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	opt := cli.getRequestOption()
	defer cli.putRequestOption(opt)

	for _, o := range opts {
		o(opt)
	}

	if len(opt.query) > 0 {
		u, err := appendQuery(rawURL, opt.query)
		if err != nil {
			return nil, err
		}
		rawURL = u
	}

	ctx := opt.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := cli.createRequest(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range opt.header {
		req.Header.Set(k, v)
	}

	resp, err := cli.doer.Do(req)
	if err != nil {
		return nil, err
	}

	return cli.processResponse(req, resp, opt.response)
}

func (cli *Client) getRequestOption() *RequestOption {
	opt := cli.requestOptPool.Get().(*RequestOption)
	opt.reset()
	return opt
}

func (cli *Client) putRequestOption(opt *RequestOption) {
	cli.requestOptPool.Put(opt)
}

// createRequest creates an HTTP request with the appropriate body
func (cli *Client) createRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	switch v := body.(type) {
	case nil:
		return http.NewRequestWithContext(ctx, method, rawURL, nil)
	case io.Reader:
		return http.NewRequestWithContext(ctx, method, rawURL, v)
	case []byte:
		return http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(v))
	case json.RawMessage:
		return http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(v))
	default:
		return cli.createJSONRequest(ctx, method, rawURL, v)
	}
}

// createJSONRequest encodes body into a pooled buffer; the request gets its own copy
// because the transport may read the body after the buffer is recycled.
func (cli *Client) createJSONRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	buf := cli.getBuffer()
	defer cli.putBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, err
	}

	data := bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(data))
}

func (cli *Client) getBuffer() *bytes.Buffer {
	buf := cli.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool unless it grew past maxBufferSize
func (cli *Client) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		cli.bufferPool.Put(buf)
	}
}

// processResponse checks the status and decodes the body into dest when given
func (cli *Client) processResponse(req *http.Request, resp *http.Response, dest any) (*http.Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(req, resp, raw)
	}

	if dest == nil {
		return resp, nil
	}

	defer resp.Body.Close()
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return resp, nil
		}
		return nil, err
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, err
	}

	return resp, nil
}

func statusError(req *http.Request, resp *http.Response, body []byte) *kerrors.Error {
	return kerrors.NewWithMetadata(resp.StatusCode, map[string]string{
		"method": req.Method,
		"url":    req.URL.String(),
		"status": resp.Status,
		"body":   string(body),
	}, "request failed with status code %d", resp.StatusCode)
}

// appendQuery appends the encoded query to rawURL, leaving any existing query as written
func appendQuery(rawURL string, query url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	encoded := query.Encode()
	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery += "&" + encoded
	}

	return u.String(), nil
}

// Convenience methods for common HTTP operations

// Get performs a GET request
func (cli *Client) Get(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodGet, url, nil, opts...)
}

// Post performs a POST request with JSON body
func (cli *Client) Post(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodPost, url, body, opts...)
}

// Put performs a PUT request with JSON body
func (cli *Client) Put(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodPut, url, body, opts...)
}

// Delete performs a DELETE request
func (cli *Client) Delete(url string, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodDelete, url, nil, opts...)
}

// Patch performs a PATCH request with JSON body
func (cli *Client) Patch(url string, body any, opts ...func(*RequestOption)) (*http.Response, error) {
	return cli.Request(MethodPatch, url, body, opts...)
}
