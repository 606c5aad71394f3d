package deezer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	c := NewClient("https://api.deezer.com/", 0, 0)
	assert.Equal(t, "https://api.deezer.com/search?q=daft%20punk&limit=100", c.SearchURL("daft punk"))
	assert.Equal(t, "https://api.deezer.com/search?q=&limit=100", c.SearchURL(""))
	assert.Equal(t, "https://api.deezer.com/search?q=AC%2FDC%20%26%20friends&limit=100", c.SearchURL("AC/DC & friends"))
}

func TestSearch_SendsOneRequest(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "daft punk", r.URL.Query().Get("q"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(threeTracks))
	}))
	defer server.Close()

	c := NewClient(server.URL, 100, time.Second)
	res, err := c.Search(context.Background(), "daft punk")
	require.NoError(t, err)
	assert.Len(t, res.Results, 3)
	assert.EqualValues(t, 3, res.Total)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestSearch_EmptyQueryIsSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "q=&")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL, 100, time.Second).Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestSearch_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	res, err := NewClient(server.URL, 100, time.Second).Search(context.Background(), "daft punk")
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())
	assert.NotNil(t, res.Results)
}

func TestSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, 100, 50*time.Millisecond)
	_, err := c.Search(context.Background(), "slow")
	require.Error(t, err)
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(server.URL, 100, time.Second).Search(ctx, "x")
	require.Error(t, err)
}

func TestSearch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, 100, time.Second).Search(context.Background(), "x")
	require.Error(t, err)
}
