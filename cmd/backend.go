package cmd

import (
	"context"

	"github.com/emrgen/sweater"
	"github.com/emrgen/sweater/internal/cache"
	"github.com/emrgen/sweater/internal/config"
	"github.com/emrgen/sweater/internal/domain"
	"github.com/emrgen/sweater/internal/graph"
	"github.com/emrgen/sweater/internal/oid"
	"github.com/emrgen/sweater/internal/service"
	"github.com/emrgen/sweater/internal/store"
)

// openBackend returns a client for --server when set, else a backend working
// on the configured database directly.
func openBackend() (sweater.Client, error) {
	if serverAddress != "" {
		return sweater.NewClient(serverAddress)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := config.GetDb(cfg)
	if err != nil {
		return nil, err
	}

	thesisStore := store.NewGormStore(db)
	if err := thesisStore.Migrate(); err != nil {
		return nil, err
	}

	graphCache, err := cache.NewGraphCache(cfg)
	if err != nil {
		return nil, err
	}

	exporter, err := graph.NewExporter(thesisStore, graphCache, cfg.Export)
	if err != nil {
		return nil, err
	}

	return &localBackend{
		service:  service.NewThesisService(thesisStore, cfg.RelationKinds),
		exporter: exporter,
	}, nil
}

var _ sweater.Client = (*localBackend)(nil)

type localBackend struct {
	service  *service.ThesisService
	exporter *graph.Exporter
}

func (l *localBackend) Apply(ctx context.Context, input string, atomic bool) ([]sweater.Result, error) {
	var results []*service.Result
	var err error
	if atomic {
		results, err = l.service.ApplyAtomic(ctx, input)
	} else {
		results, err = l.service.Apply(ctx, input)
	}

	converted := make([]sweater.Result, 0, len(results))
	for _, result := range results {
		converted = append(converted, sweater.Result{
			Block:   result.Block,
			Op:      string(result.Op),
			ID:      result.ID.String(),
			Existed: result.Existed,
			Removed: oid.Strings(result.Removed),
		})
	}

	return converted, err
}

func (l *localBackend) Graph(ctx context.Context) (string, error) {
	return l.exporter.Export(ctx)
}

func (l *localBackend) Get(ctx context.Context, ref string) (*sweater.Thesis, error) {
	thesis, err := l.service.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	return convertThesis(thesis), nil
}

func (l *localBackend) Tagged(ctx context.Context, tag string) ([]string, error) {
	ids, err := l.service.Tagged(ctx, tag)
	if err != nil {
		return nil, err
	}

	return oid.Strings(ids), nil
}

func convertThesis(thesis *domain.Thesis) *sweater.Thesis {
	converted := &sweater.Thesis{
		ID:    thesis.ID().String(),
		Alias: thesis.Alias,
		Tags:  thesis.Tags,
	}

	if text := thesis.Content.Text; text != nil {
		converted.Content.Text = &sweater.Text{
			Parts:      text.Parts,
			References: oid.Strings(text.References),
		}
	}
	if relation := thesis.Content.Relation; relation != nil {
		converted.Content.Relation = &sweater.Relation{
			From: relation.From.String(),
			To:   relation.To.String(),
			Kind: relation.Kind,
		}
	}

	return converted
}
