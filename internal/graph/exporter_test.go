package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/compress"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/service"
	"github.com/emrgen/sweater/internal/store"
	"github.com/emrgen/sweater/internal/tester"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultExport = config.ExportConfig{WrapWidth: 64, ShowReferences: true, RelationNodes: RelationNodesRelated}

type countingCache struct {
	entries map[string][]byte
	gets    int
	sets    int
	err     error
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	graph, ok := c.entries[key]
	return graph, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, graph []byte) error {
	c.sets++
	if c.err != nil {
		return c.err
	}
	c.entries[key] = graph
	return nil
}

func setup(t *testing.T, input string) (*service.ThesisService, store.Store) {
	s := store.NewGormStore(tester.Setup(t))
	svc := service.NewThesisService(s, tester.RelationKinds)
	_, err := svc.Apply(context.TODO(), input)
	require.NoError(t, err)
	return svc, s
}

func TestExporter_Export(t *testing.T) {
	_, s := setup(t, `
+ <man>
Socrates is a man

+ mortal
[<man>] is mortal

+
<man>
therefore
mortal
`)

	e, err := NewExporter(s, cache.Nop{}, defaultExport)
	require.NoError(t, err)

	graph, err := e.Export(context.TODO())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(graph, "digraph"))
	assert.Contains(t, graph, "&lt;man&gt;")
	assert.NotContains(t, graph, "<man>")
	assert.Contains(t, graph, "[&lt;man&gt;] is mortal")
	assert.Contains(t, graph, `label="therefore"`)
	assert.Contains(t, graph, `style="dashed"`)
	assert.Contains(t, graph, "shape=\"plaintext\"")
}

func TestExporter_RelationNodes(t *testing.T) {
	input := `
+ a
A is so

+ b
B is so

+ r
a
therefore
b

+
r
because
a
`
	tests := []struct {
		mode      string
		kindNodes int
		kindEdges int
	}{
		{mode: RelationNodesNone, kindNodes: 0, kindEdges: 2},
		{mode: RelationNodesRelated, kindNodes: 1, kindEdges: 1},
		{mode: RelationNodesAll, kindNodes: 2, kindEdges: 0},
	}

	_, s := setup(t, input)
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := defaultExport
			cfg.RelationNodes = tt.mode
			e, err := NewExporter(s, cache.Nop{}, cfg)
			require.NoError(t, err)

			graph, err := e.Export(context.TODO())
			require.NoError(t, err)

			nodes := strings.Count(graph, `<TD BORDER="0">therefore</TD>`) + strings.Count(graph, `<TD BORDER="0">because</TD>`)
			edges := strings.Count(graph, `therefore"`) + strings.Count(graph, `because"`)
			assert.Equal(t, tt.kindNodes, nodes)
			assert.Equal(t, tt.kindEdges, edges)
		})
	}
}

func TestExporter_RelationAlias(t *testing.T) {
	_, s := setup(t, "+ a\nA is so\n\n+ b\nB is so\n\n+ r\na\ntherefore\nb\n\n+\nb\nbecause\na")

	for _, mode := range []string{RelationNodesNone, RelationNodesRelated} {
		t.Run(mode, func(t *testing.T) {
			cfg := defaultExport
			cfg.RelationNodes = mode
			e, err := NewExporter(s, cache.Nop{}, cfg)
			require.NoError(t, err)

			graph, err := e.Export(context.TODO())
			require.NoError(t, err)
			assert.Contains(t, graph, `label="r: therefore"`)
			assert.Contains(t, graph, `label="because"`)
		})
	}
}

func TestExporter_HidesReferences(t *testing.T) {
	_, s := setup(t, "+ a\nA is so\n\n+\nsee [a]")

	cfg := defaultExport
	cfg.ShowReferences = false
	e, err := NewExporter(s, cache.Nop{}, cfg)
	require.NoError(t, err)

	graph, err := e.Export(context.TODO())
	require.NoError(t, err)
	assert.NotContains(t, graph, "dashed")
	assert.Contains(t, graph, "see [a]")
}

func TestExporter_Cache(t *testing.T) {
	svc, s := setup(t, "+ a\nA is so")
	c := &countingCache{entries: map[string][]byte{}}

	e, err := NewExporter(s, c, defaultExport)
	require.NoError(t, err)

	first, err := e.Export(context.TODO())
	require.NoError(t, err)
	second, err := e.Export(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.sets)

	_, err = svc.Apply(context.TODO(), "+ b\nB is so")
	require.NoError(t, err)

	third, err := e.Export(context.TODO())
	require.NoError(t, err)
	assert.Contains(t, third, "B is so")
	assert.Equal(t, 2, c.sets)

	t.Run("failures are not fatal", func(t *testing.T) {
		c.err = errors.New("cache down")
		graph, err := e.Export(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, third, graph)
	})
}

func TestExporter_SharedCache(t *testing.T) {
	_, first := setup(t, "+ a\nA is so")
	_, second := setup(t, "+ b\nB is so")
	c := &countingCache{entries: map[string][]byte{}}

	e1, err := NewExporter(first, c, defaultExport)
	require.NoError(t, err)
	e2, err := NewExporter(second, c, defaultExport)
	require.NoError(t, err)

	// both databases are at the same revision
	graph, err := e1.Export(context.TODO())
	require.NoError(t, err)
	assert.Contains(t, graph, "A is so")

	graph, err = e2.Export(context.TODO())
	require.NoError(t, err)
	assert.Contains(t, graph, "B is so")
	assert.NotContains(t, graph, "A is so")
	assert.Len(t, c.entries, 2)
}

func TestExporter_RedisCache(t *testing.T) {
	_, s := setup(t, "+ a\nA is so")
	mr := miniredis.RunT(t)
	c := cache.NewRedisGraphCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), compress.NewBrotli(), time.Minute)

	e, err := NewExporter(s, c, defaultExport)
	require.NoError(t, err)

	graph, err := e.Export(context.TODO())
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)

	cached, err := e.Export(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, graph, cached)
}

func TestNewExporter_Invalid(t *testing.T) {
	_, err := NewExporter(nil, cache.Nop{}, config.ExportConfig{WrapWidth: 10, RelationNodes: "some"})
	assert.Error(t, err)

	_, err = NewExporter(nil, cache.Nop{}, config.ExportConfig{WrapWidth: 0})
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{text: "", width: 10, want: []string{""}},
		{text: "aaa bbb ccc ddd", width: 7, want: []string{"aaa bbb", "ccc ddd"}},
		{text: "aaa bbb ccc ddd", width: 6, want: []string{"aaa", "bbb", "ccc", "ddd"}},
		{text: "incomprehensibilities a", width: 5, want: []string{"incomprehensibilities", "a"}},
		{text: "[<b>] is   so", width: 64, want: []string{"[&lt;b&gt;] is so"}},
		{text: "мир труд май", width: 8, want: []string{"мир труд", "май"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.text, tt.width))
		})
	}
}
