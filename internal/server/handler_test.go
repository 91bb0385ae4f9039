package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/command"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/graph"
	"github.com/emrgen/sweater/internal/service"
	"github.com/emrgen/sweater/internal/store"
	"github.com/emrgen/sweater/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	s := store.NewGormStore(tester.Setup(t))
	exporter, err := graph.NewExporter(s, cache.Nop{}, config.ExportConfig{WrapWidth: 64, ShowReferences: true})
	require.NoError(t, err)

	server := httptest.NewServer(NewHandler(service.NewThesisService(s, tester.RelationKinds), exporter))
	t.Cleanup(server.Close)

	return server
}

func post(t *testing.T, url, body string) (*http.Response, applyResponse) {
	res, err := http.Post(url, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded applyResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res, decoded
}

func TestHandler_Commands(t *testing.T) {
	server := newTestServer(t)

	res, body := post(t, server.URL+"/v1/commands", "+ a\nA is so\n\n+ b\nB is so\n\n+\na\ntherefore\nb\n\n#\na\ngreek")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, body.Results, 4)
	assert.Equal(t, command.OpAdd, body.Results[2].Op)
	assert.Empty(t, body.Error)

	res, body = post(t, server.URL+"/v1/commands", "+ c\nC is so\n\n-\nnobody")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Len(t, body.Results, 1)
	assert.Contains(t, body.Error, "block 2")

	res, body = post(t, server.URL+"/v1/commands?atomic=true", "+ d\nD is so\n\n*\nbroken")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, body.Results)

	res, err := http.Get(server.URL + "/v1/theses/d")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = post(t, server.URL+"/v1/commands?atomic=maybe", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	t.Run("thesis", func(t *testing.T) {
		res, err := http.Get(server.URL + "/v1/theses/a")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var thesis thesisResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&thesis))
		assert.Equal(t, "a", thesis.Alias)
		assert.Equal(t, []string{"greek"}, thesis.Tags)
		assert.Equal(t, domain.Text{Parts: []string{"A is so"}}.ID(), thesis.ID)
		assert.Equal(t, thesis.ID, thesis.Thesis.ID())
	})

	t.Run("escaped alias", func(t *testing.T) {
		res, body := post(t, server.URL+"/v1/commands", "+ a/b\nSlashed is so")
		require.Equal(t, http.StatusOK, res.StatusCode, body.Error)

		res, err := http.Get(server.URL + "/v1/theses/" + url.PathEscape("a/b"))
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)

		var thesis thesisResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&thesis))
		assert.Equal(t, "a/b", thesis.Alias)
	})

	t.Run("unknown route", func(t *testing.T) {
		res, err := http.Get(server.URL + "/v1/nothing")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		res, err = http.Post(server.URL+"/v1/graph", "text/plain", nil)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	})

	t.Run("tagged", func(t *testing.T) {
		res, err := http.Get(server.URL + "/v1/tags/greek")
		require.NoError(t, err)
		defer res.Body.Close()

		var tagged taggedResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&tagged))
		assert.Len(t, tagged.IDs, 1)

		res, err = http.Get(server.URL + "/v1/tags/" + "bad-tag")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("graph", func(t *testing.T) {
		res, err := http.Get(server.URL + "/v1/graph")
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, res.Header.Get("Content-Type"), "text/vnd.graphviz")

		data, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(data), "A is so")
		assert.Contains(t, string(data), `label="therefore"`)
	})

	t.Run("cors", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/v1/commands", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: x", service.ErrUnknownThesis), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: x", service.ErrUnknownReference), want: http.StatusNotFound},
		{err: fmt.Errorf("%w: x", service.ErrUnknownRelationKind), want: http.StatusBadRequest},
		{err: &command.ParseError{Block: 1, Line: 1, Err: command.ErrUnknownOperation}, want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: x", domain.ErrInvalidTag), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: %w", service.ErrStoreFailure, errors.New("disk")), want: http.StatusInternalServerError},
		{err: errors.New("other"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
