// Package vectorstore provides the semantic index drivers. The index is
// an external collaborator from the core's perspective: documents go in
// once at seeding time, similarity search comes out per inquiry.
package vectorstore

import (
	"context"

	"github.com/poochpalace/adoptions/pkg/models"
)

// Driver is the contract every vector store backend implements.
type Driver interface {
	// Kind returns the driver identifier (e.g. "embedded", "pgvector").
	Kind() string

	// Upsert inserts or replaces documents.
	Upsert(ctx context.Context, docs []models.VectorDoc) error

	// Search returns the topK most similar documents to the query vector,
	// best first.
	Search(ctx context.Context, vector []float64, topK int) ([]models.SearchResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}
