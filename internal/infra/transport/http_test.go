package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

func TestHTTPTransportPostsJSON(t *testing.T) {
	var gotBody string
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotHeader = r.Header.Clone()
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPTransportOptions{})
	resp, err := tr.Post(context.Background(), srv.URL, []byte(`{"apiKey":"k"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(resp))
	assert.JSONEq(t, `{"apiKey":"k"}`, gotBody)
	assert.Equal(t, "application/json;charset=UTF-8", gotHeader.Get("Content-Type"))
	assert.Equal(t, "en", gotHeader.Get("Origin-Language"))
}

func TestHTTPTransportDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPTransportOptions{})
	_, err := tr.Post(context.Background(), srv.URL, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
	assert.Equal(t, 1, calls)
}

func TestHTTPTransportTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	tr := NewHTTPTransport(HTTPTransportOptions{Timeout: 50 * time.Millisecond})
	_, err := tr.Post(context.Background(), srv.URL, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTransport))
}

func TestHTTPTransportHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewHTTPTransport(HTTPTransportOptions{})
	_, err := tr.Post(ctx, srv.URL, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeCanceled))
}
