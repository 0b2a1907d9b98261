package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preciosya/backend/internal/domain"
	"github.com/preciosya/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search   *usecase.SearchService
	cart     *usecase.CartService
	sessions *usecase.SessionRegistry
	logger   *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	search *usecase.SearchService,
	cart *usecase.CartService,
	sessions *usecase.SessionRegistry,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		search:   search,
		cart:     cart,
		sessions: sessions,
		logger:   logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "preciosya-backend",
		"version":  "1.0.0",
		"sessions": h.sessions.Len(),
	})
}

// ListRetailers returns the supported retailers with their display metadata
func (h *Handler) ListRetailers(c *gin.Context) {
	retailers := make([]domain.RetailerMeta, 0, len(domain.Retailers))
	for _, r := range domain.Retailers {
		retailers = append(retailers, r.Meta())
	}
	c.JSON(http.StatusOK, gin.H{"retailers": retailers})
}

// SearchItemRequest is the body of a single item search
type SearchItemRequest struct {
	Query     string   `json:"query" binding:"required"`
	Limit     int      `json:"limit" binding:"gte=0"`
	Retailers []string `json:"retailers"`
	Order     string   `json:"order"`
}

// SearchItemResponse is a single item search with products flattened and sorted
type SearchItemResponse struct {
	Query              string                  `json:"query"`
	Order              usecase.SortOrder       `json:"order"`
	Results            []domain.RetailerResult `json:"results"`
	Products           []domain.Product        `json:"products"`
	BestPrice          *float64                `json:"bestPrice"`
	BestPriceFormatted string                  `json:"bestPriceFormatted,omitempty"`
	FailedRetailers    []domain.RetailerID     `json:"failedRetailers"`
}

// SearchItem handles single product searches across retailers
func (h *Handler) SearchItem(c *gin.Context) {
	var req SearchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	retailers, err := parseRetailers(req.Retailers)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.search.SearchItem(c.Request.Context(), retailers, req.Query, req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	order := usecase.ParseSortOrder(req.Order)
	out := SearchItemResponse{
		Query:           req.Query,
		Order:           order,
		Results:         resp.Results,
		Products:        usecase.SortProducts(usecase.FlattenProducts(resp.Results), order),
		FailedRetailers: usecase.FailedRetailers(resp.Results),
	}
	if best, ok := usecase.BestPrice(out.Products); ok {
		out.BestPrice = &best
		out.BestPriceFormatted = domain.FormatMoney(best)
	}
	c.JSON(http.StatusOK, out)
}

// parseRetailers validates client supplied retailer ids
func parseRetailers(names []string) ([]domain.RetailerID, error) {
	retailers := make([]domain.RetailerID, 0, len(names))
	for _, name := range names {
		r, err := domain.ParseRetailer(name)
		if err != nil {
			return nil, err
		}
		retailers = append(retailers, r)
	}
	return retailers, nil
}

// respondError maps an error to its HTTP status and writes it
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var searchErr *domain.SearchError
	switch {
	case errors.As(err, &searchErr):
		status = http.StatusBadGateway
		message = searchErr.Error()
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrNoRetailers),
		errors.Is(err, domain.ErrUnknownRetailer),
		errors.Is(err, domain.ErrNoCatalog):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrKeyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSearchSuperseded):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		message = "search timed out"
	case errors.Is(err, domain.ErrSearchAPIFailure):
		status = http.StatusBadGateway
	default:
		message = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
