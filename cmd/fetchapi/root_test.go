package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/fetchapi/errors"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		body, _ := io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
			"body":   string(body),
			"client": r.Header.Get("X-Client"),
			"rid":    r.Header.Get("X-Request-Id"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	for _, k := range []string{"SERVER_URL", "REACT_APP_SERVER_URL", "LOG_LEVEL", "LOG_OUTPUT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got, nil
}

func TestRunGet(t *testing.T) {
	srv := echoServer(t)

	got, err := execute(t, "--base-url", srv.URL, "GET", "users", "-q", "id=5", "-q", "tag=a", "-q", "tag=b")
	require.NoError(t, err)
	assert.Equal(t, "GET", got["method"])
	assert.Equal(t, "/users", got["path"])
	assert.Equal(t, "id=5&tag%5B%5D=a&tag%5B%5D=b", got["query"])
	assert.Empty(t, got["body"])
}

func TestRunPost(t *testing.T) {
	srv := echoServer(t)

	got, err := execute(t, "--base-url", srv.URL, "-H", "X-Client=cli", "POST", "/orders", "--data", `{"item":"x","qty":2}`)
	require.NoError(t, err)
	assert.Equal(t, "/orders", got["path"])
	assert.JSONEq(t, `{"item":"x","qty":2}`, got["body"].(string))
	assert.Equal(t, "cli", got["client"])
	assert.Empty(t, got["rid"])

	got, err = execute(t, "--base-url", srv.URL, "--request-id", "POST", "orders")
	require.NoError(t, err)
	assert.NotEmpty(t, got["rid"])
}

func TestRunDropsPayloadForOtherMethods(t *testing.T) {
	srv := echoServer(t)

	got, err := execute(t, "--base-url", srv.URL, "DELETE", "orders", "--data", `{"id":1}`)
	require.NoError(t, err)
	assert.Equal(t, "DELETE", got["method"])
	assert.Empty(t, got["query"])
	assert.Empty(t, got["body"])
}

func TestRunBaseURLFromConfigFile(t *testing.T) {
	srv := echoServer(t)
	file := t.TempDir() + "/fetchapi.yaml"
	require.NoError(t, os.WriteFile(file, []byte("server:\n  url: "+srv.URL+"\nlog:\n  level: error\n"), 0o644))

	got, err := execute(t, "--config", file, "GET", "health")
	require.NoError(t, err)
	assert.Equal(t, "/health", got["path"])
}

func TestRunErrors(t *testing.T) {
	srv := echoServer(t)

	_, err := execute(t, "--base-url", srv.URL, "GET", "fail")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.Code(err))

	_, err = execute(t, "GET", "users")
	require.Error(t, err, "base url is required")
	assert.Equal(t, http.StatusBadRequest, errors.Code(err))

	_, err = execute(t, "--base-url", srv.URL, "POST", "orders", "--data", "{")
	assert.ErrorContains(t, err, "invalid --data")

	_, err = execute(t, "--base-url", srv.URL, "GET", "users")
	require.NoError(t, err)

	_, err = execute(t, "GET")
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	data, err := parsePayload(`{"page":1}`, []string{"side=white"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page": json.Number("1"), "side": "white"}, data)

	data, err = parsePayload("", nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = parsePayload(`[1,2]`, []string{"a=b"})
	assert.Error(t, err)

	_, err = parsePayload("", []string{"novalue"})
	assert.Error(t, err)
}
