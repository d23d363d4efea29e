package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codegraph/internal/graph"
)

func TestHTTPStore_BulkInsert(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotReq bulkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/graph/bulk", r.URL.Path)
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(BulkResult{NodesCreated: 2, EdgesCreated: 1})
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "secret")
	res, err := s.BulkInsert(context.Background(),
		[]graph.Node{{ID: "a", Label: "File", Name: "a"}, {ID: "b", Label: "function", Name: "b"}},
		[]graph.Edge{{SourceID: "a", TargetID: "b", Type: "HAS_SYMBOL"}})
	require.NoError(t, err)

	assert.Equal(t, "secret", gotKey)
	assert.Len(t, gotReq.Nodes, 2)
	assert.Len(t, gotReq.Edges, 1)
	assert.Equal(t, 2, res.NodesCreated)
	assert.Equal(t, 1, res.EdgesCreated)
}

func TestHTTPStore_BulkInsertServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "secret")
	_, err := s.BulkInsert(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPStore_SymbolIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/graph/symbols", r.URL.Path)
		w.Write([]byte(`{"symbols":[{"id":"a.py::f","name":"f"},{"id":"a.py::A","name":"A"},{"id":"x","name":""}]}`))
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL, "secret")
	index, err := s.SymbolIndex(context.Background())
	require.NoError(t, err)

	assert.Len(t, index, 2)
	assert.Equal(t, "a.py::f", index["f"])
	assert.Equal(t, "a.py::A", index["A"])
}
