package graph

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emicklei/dot"
	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/emrgen/sweater/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	RelationNodesNone    = "none"
	RelationNodesRelated = "related"
	RelationNodesAll     = "all"
)

// NewExporter creates a graph exporter reading from store. Rendered graphs are
// kept in cache keyed by the store revision.
func NewExporter(store store.Store, cache cache.GraphCache, cfg config.ExportConfig) (*Exporter, error) {
	switch cfg.RelationNodes {
	case RelationNodesNone, RelationNodesRelated, RelationNodesAll:
	case "":
		cfg.RelationNodes = RelationNodesRelated
	default:
		return nil, fmt.Errorf("unknown relation nodes mode %q, expected one of %s, %s, %s",
			cfg.RelationNodes, RelationNodesNone, RelationNodesRelated, RelationNodesAll)
	}
	if cfg.WrapWidth <= 0 {
		return nil, fmt.Errorf("wrap width must be positive, got %d", cfg.WrapWidth)
	}

	return &Exporter{store: store, cache: cache, config: cfg}, nil
}

// Exporter renders the whole thesis graph as graphviz dot.
type Exporter struct {
	store  store.Store
	cache  cache.GraphCache
	config config.ExportConfig
}

// Export renders every thesis from one read snapshot.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	var graph string
	err := e.store.ReadTransaction(ctx, func(tx store.Store) error {
		revision, err := tx.Revision(ctx)
		if err != nil {
			return err
		}
		instance, err := tx.Instance(ctx)
		if err != nil {
			return err
		}

		key := e.cacheKey(instance, revision)
		cached, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			logrus.Warnf("graph cache get %s: %v", key, err)
		} else if ok {
			logrus.Debugf("graph cache hit for revision %d", revision)
			graph = string(cached)
			return nil
		}

		var theses []*domain.Thesis
		err = tx.EachThesis(ctx, func(thesis *domain.Thesis) error {
			theses = append(theses, thesis)
			return nil
		})
		if err != nil {
			return err
		}

		graph = e.render(theses)

		if err := e.cache.Set(ctx, key, []byte(graph)); err != nil {
			logrus.Warnf("graph cache set %s: %v", key, err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("export graph: %w", err)
	}

	return graph, nil
}

func (e *Exporter) cacheKey(instance string, revision int64) string {
	return fmt.Sprintf("%s:%d:%d:%t:%s", instance, revision, e.config.WrapWidth, e.config.ShowReferences, e.config.RelationNodes)
}

func (e *Exporter) render(theses []*domain.Thesis) string {
	names := make(map[oid.ID]string, len(theses))
	mentioned := mapset.NewThreadUnsafeSet[oid.ID]()
	for _, thesis := range theses {
		names[thesis.ID()] = thesis.Name()
		for _, id := range thesis.Content.Mentions() {
			mentioned.Add(id)
		}
	}
	name := func(id oid.ID) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id.String()
	}

	g := dot.NewGraph(dot.Directed)
	node := func(id oid.ID) dot.Node {
		return g.Node(id.String())
	}

	for _, thesis := range theses {
		id := thesis.ID()

		if text := thesis.Content.Text; text != nil {
			node(id).
				Attr("shape", "plaintext").
				Attr("label", dot.HTML(label(thesis.Name(), text.Display(name), e.config.WrapWidth)))

			if e.config.ShowReferences {
				drawn := mapset.NewThreadUnsafeSet[oid.ID]()
				for _, ref := range text.References {
					if drawn.Add(ref) {
						g.Edge(node(id), node(ref)).Dashed()
					}
				}
			}
			continue
		}

		relation := thesis.Content.Relation
		if !e.relationNode(mentioned.Contains(id)) {
			// an edge has no header, the alias goes in front of the kind
			edgeLabel := relation.Kind
			if thesis.Alias != "" {
				edgeLabel = thesis.Alias + ": " + relation.Kind
			}
			g.Edge(node(relation.From), node(relation.To), edgeLabel)
			continue
		}

		n := node(id).
			Attr("shape", "plaintext").
			Attr("label", dot.HTML(label(thesis.Name(), relation.Kind, e.config.WrapWidth)))
		g.Edge(node(relation.From), n).Attr("arrowhead", "none")
		g.Edge(n, node(relation.To))
	}

	return g.String()
}

func (e *Exporter) relationNode(mentioned bool) bool {
	switch e.config.RelationNodes {
	case RelationNodesAll:
		return true
	case RelationNodesRelated:
		return mentioned
	}
	return false
}
