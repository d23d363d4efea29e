package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codegraph/internal/parser"
)

func newTestServer(t *testing.T, apiKey string, analyze AnalyzeFunc) *httptest.Server {
	t.Helper()
	s := New(parser.NewFallbackRegistry(), apiKey, "/project", analyze, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Languages(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	resp, err := http.Get(srv.URL + "/api/analyzer/languages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Languages []string `json:"languages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Languages, "python")
	assert.Contains(t, body.Languages, "rust")
	assert.NotContains(t, body.Languages, "nodejs") // alias, not a language
}

func TestServer_ParseSingle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	resp := postJSON(t, srv.URL+"/api/analyzer/parse",
		`{"language":"python","content":"def f():\n    pass\n","path":"a.py"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res parser.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "python", res.Language)
	assert.Equal(t, "a.py", res.Path)
	require.NotEmpty(t, res.Symbols)
	assert.Equal(t, "f", res.Symbols[0].Name)
}

func TestServer_ParseValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	for name, body := range map[string]string{
		"missing language":     `{"content":"x"}`,
		"missing content":      `{"language":"python"}`,
		"unsupported language": `{"language":"cobol","content":"x"}`,
		"invalid json":         `{`,
	} {
		resp := postJSON(t, srv.URL+"/api/analyzer/parse", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestServer_ParseBatchIsolatesFailures(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	resp := postJSON(t, srv.URL+"/api/analyzer/parse-batch", `{"files":[
		{"language":"python","content":"def f():\n    pass\n","path":"a.py"},
		{"language":"cobol","content":"x","path":"b.cob"},
		{"language":"bash","content":"hello() {\n  true\n}\n","path":"c.sh"}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 3)

	var bad batchError
	require.NoError(t, json.Unmarshal(body.Results[1], &bad))
	assert.Contains(t, bad.Error, "unsupported language")
	assert.Equal(t, "b.cob", bad.Path)

	var good parser.Result
	require.NoError(t, json.Unmarshal(body.Results[2], &good))
	assert.Equal(t, "bash", good.Language)
}

func TestServer_ParseBatchEmpty(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "", nil)

	resp := postJSON(t, srv.URL+"/api/analyzer/parse-batch", `{"files":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_AnalyzeAcknowledgesImmediately(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := newTestServer(t, "", func(context.Context) error {
		close(started)
		return nil
	})

	resp := postJSON(t, srv.URL+"/api/analyzer/analyze", `{}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "started", body["status"])
	assert.Equal(t, "/project", body["path"])

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("background analysis never started")
	}
}

func TestServer_APIKeyRequired(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, "secret", nil)

	resp, err := http.Get(srv.URL + "/api/analyzer/languages")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/analyzer/languages", nil)
	req.Header.Set("X-API-Key", "secret")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
