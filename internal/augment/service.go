package augment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopmate/internal/domain"
)

// FallbackDescription is returned when description generation fails.
const FallbackDescription = "Description unavailable"

const detailsPrompt = `
Analyze this product image and extract the details for an e-commerce listing.
Return ONLY a JSON object with the following properties:
{
  "name": "A short, catchy product title",
  "description": "A catchy, SEO-friendly product description (max 100 words)",
  "category": "The most appropriate category"
}
Do not include markdown formatting like ` + "```json." + `
`

// DescriptionPrompt builds the copywriting prompt for a product.
func DescriptionPrompt(name, category string) string {
	return "You are an expert e-commerce copywriter.\n" +
		"Write a catchy, SEO-friendly product description (max 100 words) for: " + name +
		"\nUnder the category: " + category +
		"\nTone: Professional yet exciting."
}

// Service turns product hints into listing copy. Nothing is persisted.
type Service struct {
	text    domain.TextGenerator
	vision  domain.VisionGenerator
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(text domain.TextGenerator, vision domain.VisionGenerator, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{text: text, vision: vision, timeout: timeout, logger: logger}
}

// GenerateDescription never fails: generator errors collapse into
// FallbackDescription.
func (s *Service) GenerateDescription(ctx context.Context, name, category string) string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.text.GenerateText(ctx, DescriptionPrompt(name, category))
	if err != nil {
		s.logger.Warn("description generation failed",
			zap.String("name", name), zap.String("category", category), zap.Error(err))
		return FallbackDescription
	}
	return text
}

// GenerateDetailsFromImage extracts name, description and category from a
// product photo.
func (s *Service) GenerateDetailsFromImage(ctx context.Context, image []byte, mimeType string) (domain.ListingDetails, error) {
	if len(image) == 0 {
		return domain.ListingDetails{}, &domain.ValidationError{Field: "image", Reason: "no file uploaded"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.logger.Debug("extracting listing from image", zap.Int("bytes", len(image)), zap.String("mime", mimeType))
	raw, err := s.vision.GenerateFromImage(ctx, detailsPrompt, image, mimeType)
	if err != nil {
		s.logger.Error("image analysis failed", zap.Error(err))
		return domain.ListingDetails{}, domain.Upstream("analyze image", err)
	}
	details, err := ParseDetails(raw)
	if err != nil {
		s.logger.Error("image analysis returned unusable output", zap.String("response", raw), zap.Error(err))
		return domain.ListingDetails{}, err
	}
	return details, nil
}

// ParseDetails strips markdown code fences and decodes the listing object.
func ParseDetails(raw string) (domain.ListingDetails, error) {
	text := StripFences(raw)
	var d domain.ListingDetails
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return domain.ListingDetails{}, fmt.Errorf("%w: %w: %v", domain.ErrUpstream, domain.ErrMalformedResponse, err)
	}
	if d.Name == "" && d.Description == "" && d.Category == "" {
		return domain.ListingDetails{}, fmt.Errorf("%w: %w: no listing fields", domain.ErrUpstream, domain.ErrMalformedResponse)
	}
	return d, nil
}

// StripFences removes ```json and ``` markers and surrounding whitespace.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
