package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedsharma/reqpad/internal/model"
)

func newTestClient(opts ...Option) *Client {
	return NewClient(append([]Option{WithWarnings(io.Discard)}, opts...)...)
}

func newSpec(method model.Method, url string) *model.Http {
	spec := model.NewHttp()
	spec.URL = url
	spec.Method = method
	return spec
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	resp, err := newTestClient().Do(context.Background(), newSpec(model.GET, server.URL+"/test"))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "200 OK", resp.Status)
	assert.Contains(t, resp.Body, "hello")
	require.NotNil(t, resp.ContentLength)
	assert.Equal(t, int64(len(`{"message": "hello"}`)), *resp.ContentLength)
	assert.Contains(t, resp.Headers, model.Header{Key: "Content-Type", Value: "application/json"})
}

func TestClient_QueryParamsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "x=0&z=1&a=2&z=3&sp=a+b", r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	spec := newSpec(model.GET, server.URL+"/search?x=0")
	spec.ParamType = model.Query
	spec.FormParams = []model.FormParam{
		model.TextParam("z", "1"),
		model.TextParam("a", "2"),
		model.TextParam("z", "3"),
		model.TextParam("sp", "a b"),
	}

	resp, err := newTestClient().Do(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestClient_JsonOverridesContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"application/json"}, r.Header.Values("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	spec := newSpec(model.POST, server.URL)
	spec.ParamType = model.Json
	spec.TextParam = `{"a":1}`
	spec.AddHeader("Content-Type", "text/plain")

	resp, err := newTestClient().Do(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestClient_OtherKeepsUserContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "a,b\n1,2", string(body))
	}))
	defer server.Close()

	spec := newSpec(model.PUT, server.URL)
	spec.ParamType = model.Other
	spec.TextParam = "a,b\n1,2"
	spec.AddHeader("Content-Type", "text/csv")

	_, err := newTestClient().Do(context.Background(), spec)
	require.NoError(t, err)
}

func TestClient_DuplicateHeadersAllSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"a", "b"}, r.Header.Values("X-Tag"))
		assert.Equal(t, "api.internal", r.Host)
	}))
	defer server.Close()

	spec := newSpec(model.GET, server.URL)
	spec.AddHeader("X-Tag", "a")
	spec.AddHeader("X-Tag", "b")
	spec.AddHeader("Host", "api.internal")

	_, err := newTestClient().Do(context.Background(), spec)
	require.NoError(t, err)
}

func TestClient_Multipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "bob", r.FormValue("name"))
		assert.Equal(t, []string{""}, r.MultipartForm.Value["empty"])

		file, header, err := r.FormFile("doc")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "report.txt", header.Filename)
		assert.Equal(t, "file contents", string(data))

		// a file entry without a path is skipped
		_, ok := r.MultipartForm.File["nopath"]
		assert.False(t, ok)
	}))
	defer server.Close()

	spec := newSpec(model.POST, server.URL)
	spec.ParamType = model.FormData
	spec.AddHeader("Content-Type", "application/json")
	spec.FormParams = []model.FormParam{
		model.TextParam("name", "bob"),
		model.TextParam("empty", ""),
		model.FileParam("doc", path),
		{Key: "nopath", Kind: model.FormFile},
	}

	_, err := newTestClient().Do(context.Background(), spec)
	require.NoError(t, err)
}

func TestClient_MissingFileFailsWholeCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	spec := newSpec(model.POST, server.URL)
	spec.ParamType = model.FormData
	spec.FormParams = []model.FormParam{
		model.TextParam("name", "bob"),
		model.FileParam("doc", filepath.Join(t.TempDir(), "missing.pdf")),
	}

	resp, err := newTestClient().Do(context.Background(), spec)
	assert.Nil(t, resp)
	assert.False(t, called)

	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, ErrFile, sendErr.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com", "http://", "://bad"} {
		_, err := newTestClient().Do(context.Background(), newSpec(model.GET, raw))
		var sendErr *SendError
		require.True(t, errors.As(err, &sendErr), raw)
		assert.Equal(t, ErrURL, sendErr.Kind, raw)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient().Do(context.Background(), newSpec(model.GET, url))
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, ErrTransport, sendErr.Kind)
	assert.NotEmpty(t, err.Error())
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := newTestClient(WithTimeout(50*time.Millisecond)).Do(context.Background(), newSpec(model.GET, server.URL))
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, ErrTransport, sendErr.Kind)
}

func TestClient_Canceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient().Do(ctx, newSpec(model.GET, server.URL))
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, ErrCanceled, sendErr.Kind)
}

func TestClient_BodyDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{'o', 'k', 0xff})
	}))
	defer server.Close()

	resp, err := newTestClient().Do(context.Background(), newSpec(model.GET, server.URL))
	require.NoError(t, err)
	assert.Equal(t, "ok\uFFFD", resp.Body)
}

func TestClient_TruncatesLargeBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer server.Close()

	var warnings bytes.Buffer
	client := NewClient(WithWarnings(&warnings), WithMaxResponseSize(16))
	resp, err := client.Do(context.Background(), newSpec(model.GET, server.URL))
	require.NoError(t, err)
	assert.Len(t, resp.Body, 16)
	assert.Contains(t, warnings.String(), "truncated")
	assert.Contains(t, warnings.String(), "localhost/loopback")
}

func TestValidateURL(t *testing.T) {
	u, err := ValidateURL("  https://api.example.com/v1?x=1 ")
	require.NoError(t, err)
	assert.Equal(t, "api.example.com", u.Hostname())

	_, err = ValidateURL("mailto:someone@example.com")
	assert.Error(t, err)
}

func TestIsPrivateOrReservedHost(t *testing.T) {
	assert.True(t, isPrivateOrReservedHost("10.1.2.3"))
	assert.True(t, isPrivateOrReservedHost("172.20.0.1"))
	assert.True(t, isPrivateOrReservedHost("192.168.1.1"))
	assert.False(t, isPrivateOrReservedHost("172.32.0.1"))
	assert.False(t, isPrivateOrReservedHost("example.com"))
}
