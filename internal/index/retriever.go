package index

import (
	"context"
	"fmt"
	"time"

	"github.com/poochpalace/adoptions/internal/embeddings"
	"github.com/poochpalace/adoptions/internal/vectorstore"
	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"
)

// Retriever answers similarity queries over the seeded index:
// embed the question, search, return the top-k documents.
type Retriever struct {
	embeddings embeddings.Driver
	store      vectorstore.Driver
	topK       int
}

// NewRetriever creates a retriever. topK <= 0 falls back to 4.
func NewRetriever(emb embeddings.Driver, store vectorstore.Driver, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{embeddings: emb, store: store, topK: topK}
}

// Retrieve returns the top-ranked documents for the question, best first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]models.SearchResult, error) {
	start := time.Now()

	vectors, err := r.embeddings.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for question")
	}

	results, err := r.store.Search(ctx, vectors[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	log.Debug().
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Retrieval complete")

	return results, nil
}
