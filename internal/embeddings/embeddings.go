// Package embeddings provides drivers for turning text into vectors.
// The embedding model itself is an opaque external service; drivers only
// speak its HTTP API.
package embeddings

import "context"

// Driver is the contract every embedding backend implements.
type Driver interface {
	// Kind returns the driver identifier (e.g. "ollama", "openai").
	Kind() string

	// Embed generates one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the vector width the driver produces.
	Dimensions() int

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}
