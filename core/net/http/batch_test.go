package http

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/kochabx/fetchapi/errors"
)

func TestDispatchAllOrder(t *testing.T) {
	api := newFakeAPI(t)
	d := NewDispatcher(api.URL)

	results, err := d.DispatchAll(context.Background(), []Call{
		{Endpoint: "a", Method: MethodGet},
		{Endpoint: "fail", Method: MethodGet},
		{Endpoint: "empty", Method: MethodPost, Data: map[string]any{"x": 1}},
	}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, map[string]any{"ok": true}, results[0].Data)
	assert.Equal(t, http.StatusInternalServerError, kerrors.Code(results[1].Err))
	assert.NoError(t, results[2].Err)
	assert.Nil(t, results[2].Data)
}

func TestDispatchAllConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	doer := DoerFunc(func(req *http.Request) (*http.Response, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       http.NoBody,
			Header:     http.Header{},
			Request:    req,
		}, nil
	})
	d := NewDispatcher("https://api.test", WithDispatchDoer(doer))

	calls := make([]Call, 12)
	for i := range calls {
		calls[i] = Call{Endpoint: "moves", Method: MethodGet}
	}

	results, err := d.DispatchAll(context.Background(), calls, 3)
	require.NoError(t, err)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestDispatchAllEmpty(t *testing.T) {
	results, err := NewDispatcher("https://api.test").DispatchAll(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDispatchRequestID(t *testing.T) {
	doer := &recordingDoer{reply: `{}`}
	d := NewDispatcher("https://api.test", WithDispatchDoer(doer), WithRequestID())

	_, err := d.Dispatch(context.Background(), "a", MethodGet, nil)
	require.NoError(t, err)
	first := doer.req.Header.Get(HeaderRequestID)
	assert.Len(t, first, 36)
	assert.Equal(t, 4, strings.Count(first, "-"))

	_, err = d.Dispatch(context.Background(), "a", MethodGet, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, doer.req.Header.Get(HeaderRequestID))

	plain := &recordingDoer{reply: `{}`}
	_, err = NewDispatcher("https://api.test", WithDispatchDoer(plain)).Dispatch(context.Background(), "a", MethodGet, nil)
	require.NoError(t, err)
	assert.Empty(t, plain.req.Header.Get(HeaderRequestID))
}
