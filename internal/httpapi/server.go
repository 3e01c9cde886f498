package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopmate/internal/domain"
)

// ProductService is the catalog contract the handlers need.
type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, in domain.ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Augmenter produces AI-assisted listing copy.
type Augmenter interface {
	GenerateDescription(ctx context.Context, name, category string) string
	GenerateDetailsFromImage(ctx context.Context, image []byte, mimeType string) (domain.ListingDetails, error)
}

type Options struct {
	BasePath       string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// Server wires the REST endpoints to the catalog and augmentation services.
type Server struct {
	products ProductService
	augment  Augmenter
	logger   *zap.Logger
	opts     Options
}

func New(products ProductService, augment Augmenter, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{products: products, augment: augment, logger: logger, opts: opts}
}

// Handler builds the gin engine with all routes mounted under BasePath.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = s.opts.MaxUploadBytes
	r.Use(gin.Recovery(), requestLogger(s.logger), s.limits())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	products := r.Group(s.opts.BasePath).Group("/products")
	{
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.POST("/generate-description", s.generateDescription)
		products.POST("/generate-details-from-image", s.generateDetailsFromImage)
		products.GET("/:id", s.getProduct)
		products.PUT("/:id", s.updateProduct)
		products.DELETE("/:id", s.deleteProduct)
	}
	return r
}

// limits bounds the request body and the time each request may spend on
// downstream calls.
func (s *Server) limits() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			// Multipart framing needs headroom above the file size itself.
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes+1<<20)
		}
		if s.opts.RequestTimeout > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("request", fields...)
	}
}
