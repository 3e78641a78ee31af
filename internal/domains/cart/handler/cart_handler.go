package cart

import (
	"net/http"
	"strconv"

	"saloncart-backend/internal/domains/cart/model"
	"saloncart-backend/internal/domains/cart/store"
	"saloncart-backend/internal/shared/middleware"
	"saloncart-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the cart.
//
// The cart store absorbs duplicate adds, out-of-stock adds and clamped
// quantities without erroring, so every mutating endpoint answers 200 with
// the resulting cart state. A UI that needs to tell the user "that was a
// no-op" diffs the cart it holds against the one returned here.
type Handler struct {
	manager *store.Manager
}

// NewHandler creates handler instance
func NewHandler(manager *store.Manager) *Handler {
	return &Handler{manager: manager}
}

// storeFor resolves the session's cart store
func (h *Handler) storeFor(c *gin.Context) (*store.Store, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return nil, false
	}
	return h.manager.ForSession(sessionID), true
}

// ===================================
// API 1: GET /cart
// ===================================

// GetCart returns the full cart with services, products and derived totals
func (h *Handler) GetCart(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, "Cart retrieved successfully", s.Snapshot())
}

// ===================================
// API 2: POST /cart/services
// ===================================

// AddService places a booked appointment in the cart.
// Adding an appointment that is already in the cart keeps the existing
// entry; the response carries whatever the cart holds afterwards.
func (h *Handler) AddService(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	var req model.AddServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid service item", err)
		return
	}

	s.AddService(req.ToInput())
	response.Success(c, http.StatusOK, "Service added to cart", s.Snapshot())
}

// ===================================
// API 3: POST /cart/products
// ===================================

// AddProduct places a retail product in the cart, merging quantities for a
// product already present and clamping to stock
func (h *Handler) AddProduct(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	var req model.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid product item", err)
		return
	}

	s.AddProduct(req.ToInput())
	response.Success(c, http.StatusOK, "Product added to cart", s.Snapshot())
}

// ===================================
// API 4: PATCH /cart/products/{product_id}
// ===================================

// UpdateProductQuantity sets a product's quantity. Quantity 0 removes it.
func (h *Handler) UpdateProductQuantity(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req model.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	s.UpdateProductQuantity(productID, req.Quantity)
	response.Success(c, http.StatusOK, "Cart updated", s.Snapshot())
}

// ===================================
// API 5: DELETE /cart/items/{kind}/{id}
// ===================================

// RemoveItem drops every cart entry matching kind + id. Removing an absent
// id is a no-op and still answers 200.
func (h *Handler) RemoveItem(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	kind := model.Kind(c.Param("kind"))
	if kind != model.KindService && kind != model.KindProduct {
		response.BadRequest(c, "Invalid item kind, expected 'service' or 'product'")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	s.RemoveItem(id, kind)
	response.Success(c, http.StatusOK, "Item removed from cart", s.Snapshot())
}

// ===================================
// API 6: POST /cart/dedupe
// ===================================

// RemoveDuplicateServices forces the duplicate-appointment cleanup outside
// the automatic sweep
func (h *Handler) RemoveDuplicateServices(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	s.RemoveDuplicateServices()
	response.Success(c, http.StatusOK, "Duplicate services removed", s.Snapshot())
}

// ===================================
// API 7: DELETE /cart
// ===================================

// ClearCart empties the cart. Called by the checkout flow once the external
// payment collaborator confirms completion.
func (h *Handler) ClearCart(c *gin.Context) {
	s, ok := h.storeFor(c)
	if !ok {
		return
	}

	s.Clear()
	response.Success(c, http.StatusOK, "Cart cleared", s.Snapshot())
}
