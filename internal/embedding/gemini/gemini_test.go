package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"shopmate/internal/embedding/gemini"
)

func TestEmbed(t *testing.T) {
	c := qt.New(t)
	var body struct {
		Model   string `json:"model"`
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, qt.Equals, "/models/gemini-embedding-001:embedContent")
		c.Check(r.Header.Get("x-goog-api-key"), qt.Equals, "g")
		c.Check(json.NewDecoder(r.Body).Decode(&body), qt.IsNil)
		_, _ = w.Write([]byte(`{"embedding":{"values":[1,0.5]}}`))
	}))
	defer srv.Close()

	client, err := gemini.NewClient(gemini.Config{BaseURL: srv.URL, APIKey: "g"})
	c.Assert(err, qt.IsNil)

	v, err := client.Embed(context.Background(), "Nice mug")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []float64{1, 0.5})
	c.Assert(body.Model, qt.Equals, "models/gemini-embedding-001")
	c.Assert(body.Content.Parts, qt.HasLen, 1)
	c.Assert(body.Content.Parts[0].Text, qt.Equals, "Nice mug")
}

func TestEmbedEmpty(t *testing.T) {
	c := qt.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":{}}`))
	}))
	defer srv.Close()

	client, err := gemini.NewClient(gemini.Config{BaseURL: srv.URL, APIKey: "g"})
	c.Assert(err, qt.IsNil)
	_, err = client.Embed(context.Background(), "x")
	c.Assert(err, qt.ErrorMatches, "empty embedding")
}
