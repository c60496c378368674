package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the adoption concierge.
type Config struct {
	Port      int
	Version   string
	Catalog   CatalogConfig
	Embedding EmbeddingConfig
	Vector    VectorConfig
	Model     ModelConfig
	MCP       MCPConfig
	Telemetry TelemetryConfig
}

type CatalogConfig struct {
	// DataDir holds the SQLite catalog database. ":memory:" keeps the
	// catalog in-process, which is what tests use.
	DataDir string
	Seed    bool
}

type EmbeddingConfig struct {
	// Kind selects the embedding driver: "ollama" or "openai".
	Kind     string
	Endpoint string
	Model    string
	APIKey   string
}

type VectorConfig struct {
	// Kind selects the vector store: "embedded" or "pgvector".
	Kind        string
	PgvectorURL string
	TopK        int
}

type ModelConfig struct {
	// Kind selects the chat provider: "openai", "azure-openai",
	// "anthropic", or "ollama".
	Kind     string
	Endpoint string
	Model    string
	APIKey   string
}

type MCPConfig struct {
	// Enabled starts the stdio MCP server exposing the concierge tools.
	Enabled bool
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("ADOPTIONS_PORT", 8080),
		Version: envStr("ADOPTIONS_VERSION", "0.1.0"),
		Catalog: CatalogConfig{
			DataDir: envStr("ADOPTIONS_DATA_DIR", "./data"),
			Seed:    envBool("ADOPTIONS_CATALOG_SEED", true),
		},
		Embedding: EmbeddingConfig{
			Kind:     envStr("ADOPTIONS_EMBEDDING_KIND", "ollama"),
			Endpoint: envStr("ADOPTIONS_EMBEDDING_ENDPOINT", ""),
			Model:    envStr("ADOPTIONS_EMBEDDING_MODEL", "nomic-embed-text"),
			APIKey:   envStr("ADOPTIONS_EMBEDDING_API_KEY", ""),
		},
		Vector: VectorConfig{
			Kind:        envStr("ADOPTIONS_VECTOR_KIND", "embedded"),
			PgvectorURL: envStr("ADOPTIONS_PGVECTOR_URL", ""),
			TopK:        envInt("ADOPTIONS_VECTOR_TOP_K", 4),
		},
		Model: ModelConfig{
			Kind:     envStr("ADOPTIONS_MODEL_KIND", "ollama"),
			Endpoint: envStr("ADOPTIONS_MODEL_ENDPOINT", ""),
			Model:    envStr("ADOPTIONS_MODEL", "llama3.1"),
			APIKey:   envStr("ADOPTIONS_MODEL_API_KEY", ""),
		},
		MCP: MCPConfig{
			Enabled: envBool("ADOPTIONS_MCP_ENABLED", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "poochpalace-adoptions"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
