package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/preciosya/backend/internal/domain"
	"github.com/preciosya/backend/internal/usecase"
)

// CartView is the cart as returned to clients
type CartView struct {
	Groups         []usecase.CartGroup `json:"groups"`
	Count          int                 `json:"count"`
	Units          int                 `json:"units"`
	Total          float64             `json:"total"`
	TotalFormatted string              `json:"totalFormatted"`
}

// AddCartItemRequest adds one unit of a product
type AddCartItemRequest struct {
	Product *domain.Product `json:"product" binding:"required"`
}

// UpdateCartItemRequest sets the quantity of a cart entry. Product is needed
// only when the entry is not in the cart yet.
type UpdateCartItemRequest struct {
	Qty     *int            `json:"qty" binding:"required"`
	Product *domain.Product `json:"product"`
}

func (h *Handler) cartView() CartView {
	total := h.cart.Total()
	return CartView{
		Groups:         h.cart.Groups(),
		Count:          h.cart.Count(),
		Units:          h.cart.Units(),
		Total:          total,
		TotalFormatted: domain.FormatMoney(total),
	}
}

// GetCart returns the cart grouped by retailer
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView())
}

// AddCartItem adds one unit of a product, up to the per-item maximum
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	if err := h.cart.AddOne(c.Request.Context(), *req.Product); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

// DecrementCartItem removes one unit of a cart entry
func (h *Handler) DecrementCartItem(c *gin.Context) {
	if err := h.cart.RemoveOne(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

// UpdateCartItem sets the quantity of a cart entry; zero removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id := c.Param("id")

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	ctx := c.Request.Context()
	if req.Product != nil {
		if req.Product.Key() != id {
			h.respondError(c, fmt.Errorf("%w: product does not match item %q", domain.ErrInvalidRequest, id))
			return
		}
		if err := h.cart.SetQty(ctx, *req.Product, *req.Qty); err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.cartView())
		return
	}

	found, err := h.cart.UpdateQty(ctx, id, *req.Qty)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !found {
		h.respondError(c, fmt.Errorf("cart item %q: %w", id, domain.ErrKeyNotFound))
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

// RemoveCartItem deletes a cart entry whatever its quantity
func (h *Handler) RemoveCartItem(c *gin.Context) {
	if err := h.cart.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartView())
}
