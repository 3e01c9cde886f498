package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"shopmate/internal/embedding/openai"
)

func TestEmbed(t *testing.T) {
	c := qt.New(t)
	var auth string
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, qt.Equals, "/embeddings")
		auth = r.Header.Get("Authorization")
		c.Check(json.NewDecoder(r.Body).Decode(&body), qt.IsNil)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	client, err := openai.NewClient(openai.Config{BaseURL: srv.URL, APIKey: "sk"})
	c.Assert(err, qt.IsNil)
	c.Assert(client.Name(), qt.Equals, "openai")

	v, err := client.Embed(context.Background(), "a mug")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []float64{0.1, 0.2, 0.3})
	c.Assert(auth, qt.Equals, "Bearer sk")
	c.Assert(body, qt.DeepEquals, map[string]string{"input": "a mug", "model": "text-embedding-3-small"})
}

func TestEmbedErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		match  string
	}{
		{"unauthorized", http.StatusUnauthorized, "bad key", "openai embeddings failed: 401 Unauthorized: bad key"},
		{"empty data", http.StatusOK, `{"data":[]}`, "no embedding returned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			client, err := openai.NewClient(openai.Config{BaseURL: srv.URL, APIKey: "sk"})
			c.Assert(err, qt.IsNil)
			_, err = client.Embed(context.Background(), "x")
			c.Assert(err, qt.ErrorMatches, tt.match)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	c := qt.New(t)
	_, err := openai.NewClient(openai.Config{})
	c.Assert(err, qt.ErrorMatches, "openai: missing API key")
}
