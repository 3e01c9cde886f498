package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the REST surface.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	BasePath           string `yaml:"base_path"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
	MaxUploadMB        int    `yaml:"max_upload_mb"`
}

// MongoConfig holds connection details for the MongoDB product store.
type MongoConfig struct {
	URIEnv      string `yaml:"uri_env"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig selects the product store implementation.
type StoreConfig struct {
	Type  string       `yaml:"type"`
	Mongo *MongoConfig `yaml:"mongo,omitempty"`
}

// GeminiConfig configures the Gemini text and vision client.
type GeminiConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TextModel   string `yaml:"text_model"`
	VisionModel string `yaml:"vision_model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig selects the generative text/vision backend.
type GeneratorConfig struct {
	Type   string        `yaml:"type"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
}

// GeminiEmbedderConfig configures Gemini embeddings.
type GeminiEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Gemini *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// PineconeConfig names the Pinecone index. Index overrides IndexEnv when set.
type PineconeConfig struct {
	APIKeyEnv     string `yaml:"api_key_env"`
	Index         string `yaml:"index"`
	IndexEnv      string `yaml:"index_env"`
	ControllerURL string `yaml:"controller_url"`
	Namespace     string `yaml:"namespace"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	Distance    string `yaml:"distance"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector index implementation.
type VectorStoreConfig struct {
	Type     string          `yaml:"type"`
	Pinecone *PineconeConfig `yaml:"pinecone,omitempty"`
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadFile reads a config the user named explicitly. Unlike Load, a missing
// file is an error.
func LoadFile(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	return Load(path)
}

// LoadDefault tries ./shopmate.yaml first, then ~/.config/shopmate/config.yaml.
// If neither exists, it writes defaults to ~/.config/shopmate/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "shopmate.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shopmate", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Store:       StoreConfig{Type: "mongo"},
		Generator:   GeneratorConfig{Type: "gemini"},
		Embedder:    EmbedderConfig{Type: "gemini"},
		VectorStore: VectorStoreConfig{Type: "pinecone"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3001"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api"
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 60
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = "mongo"
	}
	if cfg.Store.Type == "mongo" {
		if cfg.Store.Mongo == nil {
			cfg.Store.Mongo = &MongoConfig{}
		}
		m := cfg.Store.Mongo
		if m.URIEnv == "" {
			m.URIEnv = "MONGO_URI"
		}
		if m.Database == "" {
			m.Database = "shopmate"
		}
		if m.Collection == "" {
			m.Collection = "products"
		}
		if m.TimeoutSecs == 0 {
			m.TimeoutSecs = 10
		}
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "gemini"
	}
	if cfg.Generator.Type == "gemini" {
		if cfg.Generator.Gemini == nil {
			cfg.Generator.Gemini = &GeminiConfig{}
		}
		g := cfg.Generator.Gemini
		if g.BaseURL == "" {
			g.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.TextModel == "" {
			g.TextModel = "gemini-2.5-flash"
		}
		if g.VisionModel == "" {
			g.VisionModel = g.TextModel
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 30
		}
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "gemini"
	}
	switch cfg.Embedder.Type {
	case "gemini":
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		g := cfg.Embedder.Gemini
		if g.BaseURL == "" {
			g.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gemini-embedding-001"
		}
		if g.TimeoutSecs == 0 {
			g.TimeoutSecs = 30
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "pinecone"
	}
	switch cfg.VectorStore.Type {
	case "pinecone":
		if cfg.VectorStore.Pinecone == nil {
			cfg.VectorStore.Pinecone = &PineconeConfig{}
		}
		p := cfg.VectorStore.Pinecone
		if p.APIKeyEnv == "" {
			p.APIKeyEnv = "PINECONE_API_KEY"
		}
		if p.IndexEnv == "" {
			p.IndexEnv = "PINECONE_INDEX"
		}
		if p.ControllerURL == "" {
			p.ControllerURL = "https://api.pinecone.io"
		}
		if p.TimeoutSecs == 0 {
			p.TimeoutSecs = 30
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		q := cfg.VectorStore.Qdrant
		if q.URL == "" {
			q.URL = "http://localhost:6333"
		}
		if q.APIKeyEnv == "" {
			q.APIKeyEnv = "QDRANT_API_KEY"
		}
		if q.Collection == "" {
			q.Collection = "products"
		}
		if q.Distance == "" {
			q.Distance = "Cosine"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
}
