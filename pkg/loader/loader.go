// Package loader fetches taxonomies and their terms and builds one term
// forest per taxonomy.
package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/tree"
)

// Source provides taxonomies and their flat term lists. *api.Client and
// *FileSource satisfy it.
type Source interface {
	ListTaxonomies(ctx context.Context) ([]model.Taxonomy, error)
	ListTerms(ctx context.Context, taxonomyUID string) ([]model.TermRecord, error)
}

// Load fetches the taxonomy list, then every taxonomy's terms concurrently,
// and returns one TaxonomyNode per taxonomy in list order. The first failing
// fetch cancels the rest and its error is returned; there are no partial
// results.
func Load(ctx context.Context, src Source, opts ...tree.Option) ([]*model.TaxonomyNode, error) {
	taxonomies, err := src.ListTaxonomies(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]*model.TaxonomyNode, len(taxonomies))
	g, gctx := errgroup.WithContext(ctx)
	for i, tax := range taxonomies {
		g.Go(func() error {
			records, err := src.ListTerms(gctx, tax.UID)
			if err != nil {
				return err
			}
			nodes[i] = tree.NewTaxonomyNode(tax, records, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load taxonomy terms: %w", err)
	}
	return nodes, nil
}
