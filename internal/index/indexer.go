// Package index projects the dog catalog into the semantic index and
// answers retrieval queries against it.
package index

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poochpalace/adoptions/internal/embeddings"
	"github.com/poochpalace/adoptions/internal/vectorstore"
	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"
)

// Catalog is the read interface the indexer needs from the dog store.
type Catalog interface {
	List(ctx context.Context) ([]models.Dog, error)
}

// Indexer seeds the semantic index from the catalog exactly once.
type Indexer struct {
	catalog    Catalog
	embeddings embeddings.Driver
	store      vectorstore.Driver
}

// NewIndexer creates a catalog indexer.
func NewIndexer(catalog Catalog, emb embeddings.Driver, store vectorstore.Driver) *Indexer {
	return &Indexer{catalog: catalog, embeddings: emb, store: store}
}

// EnsureIndexed populates the index from the catalog if and only if the
// index is empty. The emptiness check is a count query against the index
// itself, not a local flag, so seeding stays idempotent across restarts
// as long as the index persists.
//
// A failed count is returned as an error: serving inquiries against an
// unverifiable index would make the whole retrieval path useless, so the
// caller is expected to treat this as fatal.
func (ix *Indexer) EnsureIndexed(ctx context.Context) error {
	count, err := ix.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting index documents: %w", err)
	}
	if count > 0 {
		log.Info().Int("documents", count).Msg("Semantic index already populated")
		return nil
	}

	dogs, err := ix.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}
	if len(dogs) == 0 {
		log.Warn().Msg("Catalog is empty, nothing to index")
		return nil
	}

	texts := make([]string, len(dogs))
	for i, d := range dogs {
		texts[i] = d.DocumentText()
	}

	vectors, err := ix.embeddings.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding catalog records: %w", err)
	}
	if len(vectors) != len(dogs) {
		return fmt.Errorf("expected %d vectors, got %d", len(dogs), len(vectors))
	}

	now := time.Now()
	docs := make([]models.VectorDoc, len(dogs))
	for i, d := range dogs {
		docs[i] = models.VectorDoc{
			ID:        uuid.NewString(),
			Content:   texts[i],
			Metadata:  map[string]string{"dog_id": strconv.Itoa(d.ID)},
			Vector:    vectors[i],
			CreatedAt: now,
		}
	}

	if err := ix.store.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upserting index documents: %w", err)
	}

	log.Info().Int("documents", len(docs)).Msg("Semantic index seeded from catalog")
	return nil
}
