package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preciosya/backend/internal/domain"
	"github.com/preciosya/backend/internal/usecase"
)

// CreateSessionRequest is the optional body of a new session
type CreateSessionRequest struct {
	Retailers []string `json:"retailers"`
}

// RetailersRequest replaces the enabled retailers of a session
type RetailersRequest struct {
	Retailers []string `json:"retailers"`
}

// ListSearchRequest is a shopping list search. Items wins over List.
type ListSearchRequest struct {
	Items []string `json:"items"`
	List  string   `json:"list"`
	Limit int      `json:"limit" binding:"gte=0"`
}

// OpenOptionsRequest opens the alternative picker
type OpenOptionsRequest struct {
	Retailer  string `json:"retailer" binding:"required"`
	Query     string `json:"query" binding:"required"`
	ProductID string `json:"productId"`
}

// HighlightRequest moves the picker highlight
type HighlightRequest struct {
	ProductID string `json:"productId"`
}

// session resolves the :id path parameter, writing 404 when unknown
func (h *Handler) session(c *gin.Context) (*usecase.ShoppingSession, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return session, true
}

// CreateSession starts a shopping session. Without retailers in the body
// every supported retailer is enabled.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
			return
		}
	}

	retailers := domain.Retailers
	if req.Retailers != nil {
		parsed, err := parseRetailers(req.Retailers)
		if err != nil {
			h.respondError(c, err)
			return
		}
		retailers = parsed
	}

	session := h.sessions.Create(retailers)
	c.JSON(http.StatusCreated, session.View())
}

// GetSession renders a session
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// DeleteSession cancels any in-flight search and forgets the session
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		h.respondError(c, domain.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRetailers replaces the enabled retailers
func (h *Handler) SetRetailers(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req RetailersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	retailers, err := parseRetailers(req.Retailers)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session.SetRetailers(retailers)
	c.JSON(http.StatusOK, session.View())
}

// ToggleRetailer enables or disables one retailer
func (h *Handler) ToggleRetailer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	retailer, err := domain.ParseRetailer(c.Param("retailer"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	session.ToggleRetailer(retailer)
	c.JSON(http.StatusOK, session.View())
}

// SearchList runs a shopping list search and installs the result in the session
func (h *Handler) SearchList(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req ListSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	items := usecase.CleanItems(req.Items)
	if len(items) == 0 {
		items = usecase.ParseShoppingList(req.List)
	}
	if len(items) == 0 {
		h.respondError(c, fmt.Errorf("%w: empty shopping list", domain.ErrInvalidRequest))
		return
	}

	if _, err := session.Search(c.Request.Context(), h.search, items, req.Limit); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("list search completed",
		slog.String("session_id", session.ID()),
		slog.Int("items", len(items)),
	)
	c.JSON(http.StatusOK, session.View())
}

// OpenOptions opens the alternative picker for one retailer and list line
func (h *Handler) OpenOptions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req OpenOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	retailer, err := domain.ParseRetailer(req.Retailer)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := session.OpenOptions(retailer, req.Query, req.ProductID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Picker())
}

// GetOptions returns the picker state and its live options
func (h *Handler) GetOptions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Picker())
}

// HighlightOption moves the picker highlight; ignored while the picker is closed
func (h *Handler) HighlightOption(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req HighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	session.SetHighlighted(req.ProductID)
	c.JSON(http.StatusOK, session.Picker())
}

// CloseOptions dismisses the picker without changing any selection
func (h *Handler) CloseOptions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.CloseOptions()
	c.JSON(http.StatusOK, session.Picker())
}

// ApplyOption commits the highlighted alternative. A failure to persist the
// cart eviction is logged; the override itself is always applied.
func (h *Handler) ApplyOption(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.ApplyOption(c.Request.Context()); err != nil {
		h.logger.Warn("override applied but cart update failed",
			slog.String("session_id", session.ID()),
			slog.Any("error", err),
		)
	}
	c.JSON(http.StatusOK, session.View())
}

// ToggleRetailerCart adds a retailer's whole selection to the cart, or
// removes it when it is already all there
func (h *Handler) ToggleRetailerCart(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	retailer, err := domain.ParseRetailer(c.Param("retailer"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	added, err := session.ToggleRetailerCart(c.Request.Context(), retailer)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"added":   added,
		"cart":    h.cartView(),
		"session": session.View(),
	})
}
