package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopmate/internal/domain"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.products.List(c.Request.Context(), domain.ProductFilter{Search: c.Query("search")})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	var in domain.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, bodyError(err))
		return
	}
	p, err := s.products.Create(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := domain.ParseID(id); err != nil {
		s.writeError(c, err)
		return
	}
	var in domain.ProductUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, bodyError(err))
		return
	}
	p, err := s.products.Update(c.Request.Context(), id, in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}

// bodyError turns a decode failure into a validation error unless it already is one.
func bodyError(err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &domain.ValidationError{Reason: "request body too large"}
	}
	return &domain.ValidationError{Reason: "request body must be a JSON object"}
}

func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Product ID"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case errors.As(err, &verr) && verr.Reason == "required":
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please fill in all required fields", "error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product data", "error": err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error", "error": err.Error()})
	}
}
