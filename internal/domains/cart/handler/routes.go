package cart

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the cart endpoints on a router group that already
// carries the session middleware
func RegisterRoutes(group *gin.RouterGroup, h *Handler) {
	cart := group.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/services", h.AddService)
		cart.POST("/products", h.AddProduct)
		cart.PATCH("/products/:product_id", h.UpdateProductQuantity)
		cart.DELETE("/items/:kind/:id", h.RemoveItem)
		cart.POST("/dedupe", h.RemoveDuplicateServices)
	}
}
