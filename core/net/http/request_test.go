package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"users", "/users"},
		{"/users", "/users"},
		{"users/5/moves", "/users/5/moves"},
		{"//users", "//users"},
		{"", "/"},
		{"?page=2", "/?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeEndpoint(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeEndpoint(got), "normalization is idempotent")
		})
	}
}

func TestNewDescriptorURL(t *testing.T) {
	base := "https://api.test"

	assert.Equal(t, base+"/users", NewDescriptor(base, "users", MethodGet, nil).URL)
	assert.Equal(t, base+"/orders", NewDescriptor(base, "/orders", MethodPost, nil).URL)
	// plain concatenation: a trailing slash on the base is kept
	assert.Equal(t, "https://api.test//users", NewDescriptor(base+"/", "users", MethodGet, nil).URL)
}

func TestNewDescriptorHeaders(t *testing.T) {
	d := NewDescriptor("https://api.test", "users", MethodGet, nil)

	assert.Equal(t, ContentTypeJSON, d.Header.Get(HeaderContentType))
	assert.Equal(t, "*", d.Header.Get(HeaderAllowOrigin))
	assert.Len(t, d.Header, 2)
}

func TestPlacementFor(t *testing.T) {
	tests := map[string]Placement{
		MethodGet:    PlacementQuery,
		MethodPost:   PlacementBody,
		MethodPut:    PlacementNone,
		MethodPatch:  PlacementNone,
		MethodDelete: PlacementNone,
		"HEAD":       PlacementNone,
		"get":        PlacementNone,
		"Post":       PlacementNone,
		"":           PlacementNone,
	}

	for method, want := range tests {
		assert.Equal(t, want, PlacementFor(method), "method %q", method)
	}
	assert.Equal(t, "query", PlacementQuery.String())
	assert.Equal(t, "body", PlacementBody.String())
	assert.Equal(t, "none", PlacementNone.String())
}

func TestDescriptorPayload(t *testing.T) {
	data := map[string]any{"item": "x"}

	get := NewDescriptor("https://api.test", "orders", MethodGet, data)
	q, err := get.Query()
	require.NoError(t, err)
	assert.Equal(t, url.Values{"item": {"x"}}, q)
	assert.Nil(t, get.Body())

	post := NewDescriptor("https://api.test", "orders", MethodPost, data)
	q, err = post.Query()
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.Equal(t, data, post.Body())

	for _, method := range []string{MethodPut, MethodDelete, "get"} {
		other := NewDescriptor("https://api.test", "orders", method, data)
		q, err = other.Query()
		require.NoError(t, err)
		assert.Nil(t, q)
		assert.Nil(t, other.Body())
		assert.Nil(t, other.Payload.Data)
	}
}
