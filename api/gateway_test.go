package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjoedt/jsonstore"
)

func newTestGateway(t *testing.T) (*Gateway, string) {
	t.Helper()

	root := t.TempDir()
	store, err := jsonstore.New(root)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(root, "users"), 0755))

	return NewGateway(store), root
}

func TestHandlePut(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		gw, root := newTestGateway(t)

		res := gw.HandlePut(ctx, []byte(`{"key":"users","filename":"cfg","data":{"a":1}}`))
		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, "success", res.Message)
		assert.Nil(t, res.Payload)
		assert.Empty(t, res.Detail)

		content, err := os.ReadFile(filepath.Join(root, "users", "cfg.json"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(content))
	})

	t.Run("data may be any JSON value", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		for i, data := range []string{`null`, `[1,2]`, `"s"`, `3.5`, `false`, `{}`} {
			body := fmt.Sprintf(`{"key":"users","filename":"v%d","data":%s}`, i, data)
			res := gw.HandlePut(ctx, []byte(body))
			assert.Equal(t, StatusOK, res.Status, "data=%s", data)
		}
	})

	t.Run("field validation", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		tests := []struct {
			name    string
			body    string
			message string
		}{
			{
				name:    "missing key",
				body:    `{"filename":"cfg","data":{}}`,
				message: "Missing or invalid 'key' field",
			},
			{
				name:    "wrong-typed key",
				body:    `{"key":5,"filename":"cfg","data":{}}`,
				message: "Missing or invalid 'key' field",
			},
			{
				name:    "missing filename",
				body:    `{"key":"users","data":{}}`,
				message: "Missing or invalid 'filename' field",
			},
			{
				name:    "wrong-typed filename",
				body:    `{"key":"users","filename":[],"data":{}}`,
				message: "Missing or invalid 'filename' field",
			},
			{
				name:    "missing data",
				body:    `{"key":"users","filename":"cfg"}`,
				message: "Missing 'data' field",
			},
			{
				name:    "malformed body",
				body:    `{not json`,
				message: "Invalid JSON",
			},
			{
				name:    "non-object body",
				body:    `[1,2,3]`,
				message: "Invalid JSON",
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				res := gw.HandlePut(ctx, []byte(tc.body))
				assert.Equal(t, StatusClientError, res.Status)
				assert.Equal(t, tc.message, res.Message)
			})
		}
	})

	t.Run("missing namespace", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandlePut(ctx, []byte(`{"key":"missing","filename":"x","data":{}}`))
		assert.Equal(t, StatusNotFound, res.Status)
		assert.Equal(t, "Key directory not found", res.Message)
	})

	t.Run("invalid filename", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandlePut(ctx, []byte(`{"key":"users","filename":"...","data":{}}`))
		assert.Equal(t, StatusClientError, res.Status)
		assert.Equal(t, "Invalid filename", res.Message)
	})

	t.Run("payload too large", func(t *testing.T) {
		root := t.TempDir()
		store, err := jsonstore.New(root, jsonstore.WithMaxBlobSize(16))
		require.NoError(t, err)
		require.NoError(t, os.Mkdir(filepath.Join(root, "users"), 0755))
		gw := NewGateway(store)

		body := fmt.Sprintf(`{"key":"users","filename":"big","data":%q}`, strings.Repeat("x", 64))
		res := gw.HandlePut(ctx, []byte(body))
		assert.Equal(t, StatusTooLarge, res.Status)
		assert.Equal(t, "File exceeds maximum size (1MB)", res.Message)
	})
}

func TestHandleGet(t *testing.T) {
	ctx := context.Background()

	t.Run("success wraps value under data", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandlePut(ctx, []byte(`{"key":"users","filename":"cfg","data":{"a":1}}`))
		require.Equal(t, StatusOK, res.Status)

		res = gw.HandleGet(ctx, []byte(`{"key":"users","filename":"cfg"}`))
		require.Equal(t, StatusOK, res.Status)
		require.Contains(t, res.Payload, "data")

		raw, ok := res.Payload["data"].(json.RawMessage)
		require.True(t, ok)
		assert.JSONEq(t, `{"a":1}`, string(raw))
	})

	t.Run("missing file", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandleGet(ctx, []byte(`{"key":"users","filename":"nope"}`))
		assert.Equal(t, StatusNotFound, res.Status)
		assert.Equal(t, "File not found", res.Message)
	})

	t.Run("missing filename field", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandleGet(ctx, []byte(`{"key":"users"}`))
		assert.Equal(t, StatusClientError, res.Status)
		assert.Equal(t, "Missing or invalid 'filename' field", res.Message)
	})

	t.Run("broken content", func(t *testing.T) {
		gw, root := newTestGateway(t)

		path := filepath.Join(root, "users", "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

		res := gw.HandleGet(ctx, []byte(`{"key":"users","filename":"broken"}`))
		assert.Equal(t, StatusClientError, res.Status)
		assert.Equal(t, "Invalid JSON data", res.Message)
	})
}

func TestHandleList(t *testing.T) {
	ctx := context.Background()

	t.Run("success wraps names under files", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		for _, name := range []string{"beta", "alpha"} {
			body := fmt.Sprintf(`{"key":"users","filename":%q,"data":{}}`, name)
			require.Equal(t, StatusOK, gw.HandlePut(ctx, []byte(body)).Status)
		}

		res := gw.HandleList(ctx, []byte(`{"key":"users"}`))
		require.Equal(t, StatusOK, res.Status)
		assert.Equal(t, []string{"alpha.json", "beta.json"}, res.Payload["files"])
	})

	t.Run("missing key field", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandleList(ctx, []byte(`{}`))
		assert.Equal(t, StatusClientError, res.Status)
		assert.Equal(t, "Missing or invalid 'key' field", res.Message)
	})

	t.Run("missing namespace", func(t *testing.T) {
		gw, _ := newTestGateway(t)

		res := gw.HandleList(ctx, []byte(`{"key":"missing"}`))
		assert.Equal(t, StatusNotFound, res.Status)
		assert.Equal(t, "Key directory not found", res.Message)
	})
}

// failingStore forces the error tiers the filesystem store cannot easily
// produce in a test.
type failingStore struct {
	err error
}

func (f *failingStore) Put(ctx context.Context, key, filename string, data any) error {
	return f.err
}

func (f *failingStore) Get(ctx context.Context, key, filename string) (json.RawMessage, error) {
	return nil, f.err
}

func (f *failingStore) List(ctx context.Context, key string) ([]string, error) {
	return nil, f.err
}

func TestClassifyInternalErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("io failure", func(t *testing.T) {
		gw := NewGateway(&failingStore{err: fmt.Errorf("%w: disk gone", jsonstore.ErrIO)})

		res := gw.HandleList(ctx, []byte(`{"key":"users"}`))
		assert.Equal(t, StatusInternalError, res.Status)
		assert.Equal(t, "File I/O error", res.Message)
		assert.Contains(t, res.Detail, "disk gone")
	})

	t.Run("encoding failure", func(t *testing.T) {
		gw := NewGateway(&failingStore{err: fmt.Errorf("%w: bad value", jsonstore.ErrEncoding)})

		res := gw.HandlePut(ctx, []byte(`{"key":"users","filename":"cfg","data":{}}`))
		assert.Equal(t, StatusInternalError, res.Status)
		assert.Equal(t, "JSON encoding error", res.Message)
		assert.Contains(t, res.Detail, "bad value")
	})

	t.Run("detail never set on client tiers", func(t *testing.T) {
		gw := NewGateway(&failingStore{err: jsonstore.ErrNotFound})

		res := gw.HandleGet(ctx, []byte(`{"key":"users","filename":"x"}`))
		assert.Equal(t, StatusNotFound, res.Status)
		assert.Empty(t, res.Detail)
	})
}

func TestStatusHTTPCode(t *testing.T) {
	tests := []struct {
		status Status
		code   int
	}{
		{StatusOK, http.StatusOK},
		{StatusClientError, http.StatusBadRequest},
		{StatusNotFound, http.StatusNotFound},
		{StatusTooLarge, http.StatusRequestEntityTooLarge},
		{StatusInternalError, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.status.HTTPCode())
	}
}
