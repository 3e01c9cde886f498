package config

import (
	"fmt"
	"strings"
)

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(string) string

// ConfigurationError lists every missing or invalid setting for a process.
// It is returned before any I/O so the caller can abort cleanly.
type ConfigurationError struct {
	Process  string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration invalid: %s", e.Process, strings.Join(e.Problems, "; "))
}

type problems []string

func (p *problems) require(getenv Getenv, name, purpose string) string {
	v := strings.TrimSpace(getenv(name))
	if v == "" {
		*p = append(*p, fmt.Sprintf("%s is not set (%s)", name, purpose))
	}
	return v
}

func (p *problems) unknown(kind, value string) {
	*p = append(*p, fmt.Sprintf("unknown %s type %q", kind, value))
}

// ServerSettings are the resolved secrets the HTTP server needs.
type ServerSettings struct {
	MongoURI     string
	GeminiAPIKey string
}

// ResolveServer checks everything the API server needs.
func ResolveServer(cfg *AppConfig, getenv Getenv) (ServerSettings, error) {
	var p problems
	var s ServerSettings
	s.MongoURI = resolveStore(cfg, getenv, &p)
	switch cfg.Generator.Type {
	case "gemini":
		s.GeminiAPIKey = p.require(getenv, cfg.Generator.Gemini.APIKeyEnv, "generative text/vision API key")
	default:
		p.unknown("generator", cfg.Generator.Type)
	}
	if len(p) > 0 {
		return ServerSettings{}, &ConfigurationError{Process: "server", Problems: p}
	}
	return s, nil
}

// EmbedJobSettings are the resolved secrets the embedding job needs.
type EmbedJobSettings struct {
	MongoURI       string
	EmbedderAPIKey string
	VectorAPIKey   string
	IndexName      string
}

// ResolveEmbedJob checks everything the offline embedding job needs.
func ResolveEmbedJob(cfg *AppConfig, getenv Getenv) (EmbedJobSettings, error) {
	var p problems
	var s EmbedJobSettings
	s.MongoURI = resolveStore(cfg, getenv, &p)

	switch cfg.Embedder.Type {
	case "gemini":
		s.EmbedderAPIKey = p.require(getenv, cfg.Embedder.Gemini.APIKeyEnv, "embedding API key")
	case "openai":
		s.EmbedderAPIKey = p.require(getenv, cfg.Embedder.OpenAI.APIKeyEnv, "embedding API key")
	default:
		p.unknown("embedder", cfg.Embedder.Type)
	}

	switch cfg.VectorStore.Type {
	case "pinecone":
		pc := cfg.VectorStore.Pinecone
		s.VectorAPIKey = p.require(getenv, pc.APIKeyEnv, "vector index API key")
		s.IndexName = strings.TrimSpace(pc.Index)
		if s.IndexName == "" {
			s.IndexName = p.require(getenv, pc.IndexEnv, "vector index name")
		}
	case "qdrant":
		// Local Qdrant runs without a key.
		s.VectorAPIKey = getenv(cfg.VectorStore.Qdrant.APIKeyEnv)
		s.IndexName = cfg.VectorStore.Qdrant.Collection
	case "memory":
	default:
		p.unknown("vector store", cfg.VectorStore.Type)
	}

	if len(p) > 0 {
		return EmbedJobSettings{}, &ConfigurationError{Process: "embedding job", Problems: p}
	}
	return s, nil
}

func resolveStore(cfg *AppConfig, getenv Getenv, p *problems) string {
	switch cfg.Store.Type {
	case "mongo":
		return p.require(getenv, cfg.Store.Mongo.URIEnv, "document store connection string")
	case "memory":
		return ""
	default:
		p.unknown("store", cfg.Store.Type)
		return ""
	}
}
