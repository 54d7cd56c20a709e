package nomad

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentic-research/nomadkit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.Archive{BaseURL: srv.URL + "/api/v1/", Timeout: "5s"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestArchive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/entries/zr-1/archive", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entry_id":"zr-1","data":{"entry_id":"zr-1","archive":{"metadata":{"calc_id":"zr-1"}}}}`))
	})

	doc, err := c.Archive(context.Background(), "zr-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"entry_id": "zr-1",
		"archive":  map[string]any{"metadata": map[string]any{"calc_id": "zr-1"}},
	}, doc.Value())
}

func TestArchiveStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	_, err := c.Archive(context.Background(), "missing")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestArchiveWithoutData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entry_id":"x"}`))
	})

	_, err := c.Archive(context.Background(), "x")
	assert.ErrorContains(t, err, "no data")
}

func TestRawFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/entries/abc/raw/control.in", r.URL.Path)
		_, _ = w.Write([]byte("xc pbe\nk_grid 4 4 2\n"))
	})

	text, err := c.RawFile(context.Background(), "abc", "control.in")
	require.NoError(t, err)
	assert.Equal(t, "xc pbe\nk_grid 4 4 2\n", text)
}

func TestRawFileKeepsSurroundingWhitespace(t *testing.T) {
	const body = "\n  # species defaults\n\tk_grid 2 2 2\n\n"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	text, err := c.RawFile(context.Background(), "abc", "control.in")
	require.NoError(t, err)
	assert.Equal(t, body, text)
}

func TestEmptyEntryID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Archive(context.Background(), "")
	assert.Error(t, err)
	_, err = c.RawFile(context.Background(), "", "control.in")
	assert.Error(t, err)
}

func TestContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.RawFile(ctx, "abc", "control.in")
	assert.Error(t, err)
}
