package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopmate/internal/domain"
)

const apiVersion = "2024-07"

// Storage writes vectors to a Pinecone serverless or pod index. The data
// plane host is looked up from the index name on Init.
type Storage struct {
	apiKey        string
	index         string
	controllerURL string
	namespace     string
	batchSize     int
	host          string
	client        *http.Client
}

type Config struct {
	APIKey        string
	Index         string
	ControllerURL string
	Namespace     string
	BatchSize     int
	Timeout       time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.ControllerURL == "" {
		cfg.ControllerURL = "https://api.pinecone.io"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Storage{
		apiKey:        cfg.APIKey,
		index:         cfg.Index,
		controllerURL: strings.TrimRight(cfg.ControllerURL, "/"),
		namespace:     cfg.Namespace,
		batchSize:     cfg.BatchSize,
		client:        &http.Client{Timeout: timeout},
	}
}

type indexDescription struct {
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
}

// Init resolves the index host and checks its dimension against the embeddings.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var desc indexDescription
	if err := s.call(ctx, http.MethodGet, fmt.Sprintf("%s/indexes/%s", s.controllerURL, url.PathEscape(s.index)), nil, &desc); err != nil {
		return err
	}
	if desc.Host == "" {
		return fmt.Errorf("pinecone index %q has no host", s.index)
	}
	if desc.Dimension != 0 && desc.Dimension != dimension {
		return fmt.Errorf("pinecone index %q has dimension %d, embeddings have %d", s.index, desc.Dimension, dimension)
	}
	s.host = desc.Host
	if !strings.Contains(s.host, "://") {
		s.host = "https://" + s.host
	}
	return nil
}

type vector struct {
	ID       string                `json:"id"`
	Values   []float64             `json:"values"`
	Metadata domain.VectorMetadata `json:"metadata"`
}

// Upsert writes all records, split into request-sized batches.
func (s *Storage) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if s.host == "" {
		return errors.New("pinecone index not initialised")
	}
	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))
		batch := make([]vector, 0, end-start)
		for _, r := range records[start:end] {
			batch = append(batch, vector{ID: r.ID, Values: r.Values, Metadata: r.Metadata})
		}
		body := map[string]any{"vectors": batch}
		if s.namespace != "" {
			body["namespace"] = s.namespace
		}
		if err := s.call(ctx, http.MethodPost, s.host+"/vectors/upsert", body, nil); err != nil {
			return fmt.Errorf("upsert vectors %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (s *Storage) call(ctx context.Context, method, endpoint string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pinecone %s %s failed: %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
