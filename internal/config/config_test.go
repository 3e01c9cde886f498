package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"shopmate/internal/config"
)

func envFrom(m map[string]string) config.Getenv {
	return func(k string) string { return m[k] }
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := config.Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Addr, qt.Equals, ":3001")
	c.Assert(cfg.Server.BasePath, qt.Equals, "/api")
	c.Assert(cfg.Store.Type, qt.Equals, "mongo")
	c.Assert(cfg.Store.Mongo.Database, qt.Equals, "shopmate")
	c.Assert(cfg.Generator.Gemini.TextModel, qt.Equals, "gemini-2.5-flash")
	c.Assert(cfg.Embedder.Gemini.Model, qt.Equals, "gemini-embedding-001")
	c.Assert(cfg.VectorStore.Pinecone.APIKeyEnv, qt.Equals, "PINECONE_API_KEY")
}

func TestLoadFileRequiresExistingFile(t *testing.T) {
	c := qt.New(t)

	_, err := config.LoadFile(filepath.Join(c.TempDir(), "typo.yaml"))
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)

	path := filepath.Join(c.TempDir(), "shopmate.yaml")
	c.Assert(os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o600), qt.IsNil)
	cfg, err := config.LoadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Addr, qt.Equals, ":8080")
	c.Assert(cfg.Server.BasePath, qt.Equals, "/api")
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "shopmate.yaml")
	err := os.WriteFile(path, []byte(`
server:
  addr: ":8080"
store:
  type: memory
embedder:
  type: openai
vector_store:
  type: qdrant
  qdrant:
    url: http://qdrant:6333
`), 0o644)
	c.Assert(err, qt.IsNil)

	cfg, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Addr, qt.Equals, ":8080")
	c.Assert(cfg.Server.MaxUploadMB, qt.Equals, 10)
	c.Assert(cfg.Store.Mongo, qt.IsNil)
	c.Assert(cfg.Embedder.OpenAI.Model, qt.Equals, "text-embedding-3-small")
	c.Assert(cfg.VectorStore.Qdrant.URL, qt.Equals, "http://qdrant:6333")
	c.Assert(cfg.VectorStore.Qdrant.Collection, qt.Equals, "products")
}

func TestSaveRoundTrip(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), "nested", "config.yaml")

	orig, err := config.Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)
	c.Assert(config.Save(path, orig), qt.IsNil)

	loaded, err := config.Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded, qt.DeepEquals, orig)
}

func TestResolveServer(t *testing.T) {
	c := qt.New(t)
	cfg, err := config.Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)

	_, err = config.ResolveServer(cfg, envFrom(nil))
	var cerr *config.ConfigurationError
	c.Assert(errors.As(err, &cerr), qt.IsTrue)
	c.Assert(cerr.Problems, qt.HasLen, 2)
	c.Assert(err, qt.ErrorMatches, `server configuration invalid: MONGO_URI is not set .*; GEMINI_API_KEY is not set .*`)

	s, err := config.ResolveServer(cfg, envFrom(map[string]string{"MONGO_URI": "mongodb://db", "GEMINI_API_KEY": "g"}))
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, config.ServerSettings{MongoURI: "mongodb://db", GeminiAPIKey: "g"})
}

func TestResolveEmbedJob(t *testing.T) {
	c := qt.New(t)
	cfg, err := config.Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)

	_, err = config.ResolveEmbedJob(cfg, envFrom(map[string]string{"GEMINI_API_KEY": "g"}))
	var cerr *config.ConfigurationError
	c.Assert(errors.As(err, &cerr), qt.IsTrue)
	c.Assert(cerr.Problems, qt.HasLen, 3)

	s, err := config.ResolveEmbedJob(cfg, envFrom(map[string]string{
		"MONGO_URI":        "mongodb://db",
		"GEMINI_API_KEY":   "g",
		"PINECONE_API_KEY": "p",
		"PINECONE_INDEX":   "products",
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.DeepEquals, config.EmbedJobSettings{
		MongoURI: "mongodb://db", EmbedderAPIKey: "g", VectorAPIKey: "p", IndexName: "products",
	})
}

func TestResolveRejectsUnknownTypes(t *testing.T) {
	c := qt.New(t)
	cfg, err := config.Load(filepath.Join(c.TempDir(), "absent.yaml"))
	c.Assert(err, qt.IsNil)
	cfg.Store.Type = "sqlite"

	_, err = config.ResolveServer(cfg, envFrom(map[string]string{"GEMINI_API_KEY": "g"}))
	c.Assert(err, qt.ErrorMatches, `.*unknown store type "sqlite".*`)
}
