package sweater

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/graph"
	"github.com/emrgen/sweater/internal/server"
	"github.com/emrgen/sweater/internal/service"
	"github.com/emrgen/sweater/internal/store"
	"github.com/emrgen/sweater/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) Client {
	s := store.NewGormStore(tester.Setup(t))
	exporter, err := graph.NewExporter(s, cache.Nop{}, config.ExportConfig{WrapWidth: 64, ShowReferences: true})
	require.NoError(t, err)

	ts := httptest.NewServer(server.NewHandler(service.NewThesisService(s, tester.RelationKinds), exporter))
	t.Cleanup(ts.Close)

	client, err := NewClient(strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)

	return client
}

func TestClient(t *testing.T) {
	client := newTestClient(t)
	ctx := context.TODO()

	results, err := client.Apply(ctx, "+ a\nA is so\n\n+ b\nsee [a]\n\n+\nb\nbecause\na\n\n#\nb\ndraft", false)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "add", results[0].Op)
	assert.Len(t, results[0].ID, 22)

	thesis, err := client.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, results[1].ID, thesis.ID)
	require.NotNil(t, thesis.Content.Text)
	assert.Equal(t, []string{results[0].ID}, thesis.Content.Text.References)
	assert.Equal(t, []string{"draft"}, thesis.Tags)

	relation, err := client.Get(ctx, results[2].ID)
	require.NoError(t, err)
	require.NotNil(t, relation.Content.Relation)
	assert.Equal(t, "because", relation.Content.Relation.Kind)

	ids, err := client.Tagged(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, []string{results[1].ID}, ids)

	dot, err := client.Graph(ctx)
	require.NoError(t, err)
	assert.Contains(t, dot, "see [a]")

	results, err = client.Apply(ctx, "-\na", true)
	require.NoError(t, err)
	assert.Len(t, results[0].Removed, 3)
}

func TestClient_Errors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.TODO()

	results, err := client.Apply(ctx, "+ a\nA is so\n\n-\nnobody", false)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Message, "unknown thesis")
	assert.Len(t, results, 1)

	_, err = client.Get(ctx, "nobody")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = client.Tagged(ctx, "not-a-tag")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}
