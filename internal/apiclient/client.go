package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shopmate/internal/domain"
)

// Client talks to the product REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	return msg
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) List(ctx context.Context, search string) ([]domain.Product, error) {
	u := c.baseURL + "/products"
	if search != "" {
		u += "?" + url.Values{"search": {search}}.Encode()
	}
	var out []domain.Product
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodGet, c.productURL(id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/products", in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, upd domain.ProductUpdate) (domain.Product, error) {
	var out domain.Product
	err := c.doJSON(ctx, http.MethodPut, c.productURL(id), upd, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.productURL(id), nil, nil)
}

func (c *Client) GenerateDescription(ctx context.Context, name, category string) (string, error) {
	var out struct {
		Description string `json:"description"`
	}
	body := map[string]string{"name": name, "category": category}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/products/generate-description", body, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

// GenerateDetailsFromImage uploads the file at path as the "image" form field.
func (c *Client) GenerateDetailsFromImage(ctx context.Context, path string) (domain.ListingDetails, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ListingDetails{}, err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(path)))
	h.Set("Content-Type", http.DetectContentType(data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return domain.ListingDetails{}, err
	}
	if _, err := part.Write(data); err != nil {
		return domain.ListingDetails{}, err
	}
	if err := mw.Close(); err != nil {
		return domain.ListingDetails{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/generate-details-from-image", &buf)
	if err != nil {
		return domain.ListingDetails{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Success bool                  `json:"success"`
		Data    domain.ListingDetails `json:"data"`
	}
	if err := c.send(req, &out); err != nil {
		return domain.ListingDetails{}, err
	}
	if !out.Success {
		return domain.ListingDetails{}, errors.New("image analysis was not successful")
	}
	return out.Data, nil
}

func (c *Client) productURL(id string) string {
	return c.baseURL + "/products/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(b, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Detail = payload.Error
		}
		if apiErr.Message == "" && apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(string(b))
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
