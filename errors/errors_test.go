package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(401, "unauthorized access")
	assert.Equal(t, 401, err.GetCode())
	assert.Equal(t, "unauthorized access", err.GetMessage())
	assert.Equal(t, "code=401, message=unauthorized access", err.Error())

	formatted := New(500, "status %d", 502)
	assert.Equal(t, "status 502", formatted.GetMessage())
}

func TestWithMetadata(t *testing.T) {
	err := New(401, "unauthorized")

	assert.Same(t, err, err.WithMetadata(map[string]string{}))

	withMeta := err.WithMetadata(map[string]string{"url": "https://api.test/users", "method": "GET"})
	assert.NotSame(t, err, withMeta)
	assert.Nil(t, err.GetMetadata())
	assert.Equal(t, map[string]string{"url": "https://api.test/users", "method": "GET"}, withMeta.GetMetadata())

	// keys are rendered in sorted order
	assert.Equal(t, "code=401, message=unauthorized, metadata={method=GET, url=https://api.test/users}", withMeta.Error())
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(503, "service unavailable").WithCause(cause)

	assert.Same(t, cause, err.GetCause())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause=connection refused")
}

func TestIs(t *testing.T) {
	a := New(404, "not found").WithMetadata(map[string]string{"k": "v"})
	b := New(404, "not found")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(404, "missing")))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	std := errors.New("standard error")
	converted := FromError(std)
	require.NotNil(t, converted)
	assert.Equal(t, UnknownCode, converted.GetCode())
	assert.Same(t, std, converted.GetCause())

	existing := New(404, "not found")
	assert.Same(t, existing, FromError(existing))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, 500, "ignored"))

	cause := errors.New("yaml: line 2")
	err := Wrap(cause, 500, "config parse error")
	assert.Equal(t, 500, Code(err))
	assert.ErrorIs(t, err, cause)
}

func TestCode(t *testing.T) {
	assert.Equal(t, 400, Code(BadRequest("bad")))
	assert.Equal(t, 404, Code(NotFound("gone")))
	assert.Equal(t, 500, Code(Internal("boom")))
	assert.Equal(t, UnknownCode, Code(errors.New("plain")))

	assert.True(t, IsClientError(404))
	assert.False(t, IsClientError(500))
	assert.True(t, IsServerError(503))
}

func BenchmarkErrorString(b *testing.B) {
	err := New(500, "internal server error").
		WithMetadata(map[string]string{"service": "api", "version": "v1"}).
		WithCause(errors.New("database error"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = err.Error()
	}
}
