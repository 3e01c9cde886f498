package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gin-gonic/gin"

	"shopmate/internal/apiclient"
	"shopmate/internal/augment"
	"shopmate/internal/catalog"
	"shopmate/internal/domain"
	"shopmate/internal/httpapi"
	"shopmate/internal/store/memory"
)

type fakeGenerator struct {
	text      string
	vision    string
	visionErr error
	mime      string
}

func (f *fakeGenerator) GenerateText(context.Context, string) (string, error) { return f.text, nil }

func (f *fakeGenerator) GenerateFromImage(_ context.Context, _ string, _ []byte, mime string) (string, error) {
	f.mime = mime
	return f.vision, f.visionErr
}

func newClient(c *qt.C, gen *fakeGenerator) *apiclient.Client {
	gin.SetMode(gin.TestMode)
	svc := catalog.NewService(memory.NewStore())
	aug := augment.NewService(gen, gen, time.Second, nil)
	srv := httpapi.New(svc, aug, nil, httpapi.Options{BasePath: "/api", RequestTimeout: 5 * time.Second, MaxUploadBytes: 1 << 20})
	ts := httptest.NewServer(srv.Handler())
	c.Cleanup(ts.Close)
	return apiclient.New(apiclient.Config{BaseURL: ts.URL + "/api/", Timeout: 5 * time.Second})
}

func TestProductLifecycle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	client := newClient(c, &fakeGenerator{})

	created, err := client.Create(ctx, domain.ProductInput{
		Name:        "Coffee Mug",
		Description: "Holds coffee",
		Price:       domain.NumberFromString("12.50"),
		Category:    "Kitchen",
		Stock:       domain.NumberFromString("4"),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(created.Price, qt.Equals, 12.5)
	c.Assert(created.Stock, qt.Equals, int64(4))

	_, err = client.Create(ctx, domain.ProductInput{Name: "Plate", Description: "Flat", Price: domain.NumberFromFloat(3), Category: "Kitchen"})
	c.Assert(err, qt.IsNil)

	mugs, err := client.List(ctx, "mug")
	c.Assert(err, qt.IsNil)
	c.Assert(mugs, qt.HasLen, 1)
	c.Assert(mugs[0].ID, qt.Equals, created.ID)

	all, err := client.List(ctx, "")
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 2)

	name := "Travel Mug"
	updated, err := client.Update(ctx, created.ID.Hex(), domain.ProductUpdate{Name: &name})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.Name, qt.Equals, "Travel Mug")
	c.Assert(updated.Price, qt.Equals, 12.5)

	got, err := client.Get(ctx, created.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, updated)

	c.Assert(client.Delete(ctx, created.ID.Hex()), qt.IsNil)
	_, err = client.Get(ctx, created.ID.Hex())
	var apiErr *apiclient.APIError
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(apiErr.Status, qt.Equals, http.StatusNotFound)
	c.Assert(apiErr.Message, qt.Equals, "Product not found")
}

func TestCreateValidationError(t *testing.T) {
	c := qt.New(t)
	client := newClient(c, &fakeGenerator{})

	_, err := client.Create(context.Background(), domain.ProductInput{Name: "Mug"})
	c.Assert(err, qt.ErrorMatches, `Please fill in all required fields \(.*\)`)
}

func TestInvalidID(t *testing.T) {
	c := qt.New(t)
	client := newClient(c, &fakeGenerator{})

	err := client.Delete(context.Background(), "nope")
	c.Assert(err, qt.ErrorMatches, "Invalid Product ID")
}

func TestGenerateDescription(t *testing.T) {
	c := qt.New(t)
	client := newClient(c, &fakeGenerator{text: "Sleek and sturdy."})

	desc, err := client.GenerateDescription(context.Background(), "Mug", "Kitchen")
	c.Assert(err, qt.IsNil)
	c.Assert(desc, qt.Equals, "Sleek and sturdy.")
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestGenerateDetailsFromImage(t *testing.T) {
	c := qt.New(t)
	gen := &fakeGenerator{vision: `{"name":"Blue Mug","description":"Glazed.","category":"Kitchen"}`}
	client := newClient(c, gen)

	path := filepath.Join(c.TempDir(), "mug.png")
	c.Assert(os.WriteFile(path, pngHeader, 0o600), qt.IsNil)

	d, err := client.GenerateDetailsFromImage(context.Background(), path)
	c.Assert(err, qt.IsNil)
	c.Assert(d, qt.DeepEquals, domain.ListingDetails{Name: "Blue Mug", Description: "Glazed.", Category: "Kitchen"})
	c.Assert(gen.mime, qt.Equals, "image/png")
}

func TestGenerateDetailsUpstreamFailure(t *testing.T) {
	c := qt.New(t)
	client := newClient(c, &fakeGenerator{visionErr: errors.New("quota exceeded")})

	path := filepath.Join(c.TempDir(), "mug.png")
	c.Assert(os.WriteFile(path, pngHeader, 0o600), qt.IsNil)

	_, err := client.GenerateDetailsFromImage(context.Background(), path)
	var apiErr *apiclient.APIError
	c.Assert(errors.As(err, &apiErr), qt.IsTrue)
	c.Assert(apiErr.Status, qt.Equals, http.StatusInternalServerError)
	c.Assert(apiErr.Detail, qt.Matches, ".*quota exceeded")
}

func TestGenerateDetailsMissingFile(t *testing.T) {
	c := qt.New(t)
	client := newClient(c, &fakeGenerator{})

	_, err := client.GenerateDetailsFromImage(context.Background(), filepath.Join(c.TempDir(), "missing.png"))
	c.Assert(err, qt.ErrorIs, os.ErrNotExist)
}
