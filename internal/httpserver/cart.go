package httpserver

import (
	"net/http"

	cartsvc "cartify/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (a *api) listCart(c *gin.Context) {
	user, _ := currentUser(c)
	items, err := a.deps.CartSvc.List(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": toCartItemViews(items)})
}

func (a *api) addToCart(c *gin.Context) {
	user, _ := currentUser(c)
	var in cartsvc.AddInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := a.deps.CartSvc.Add(c.Request.Context(), user.ID, in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart_item": toCartItemView(*item)})
}

func (a *api) updateCartItem(c *gin.Context) {
	user, _ := currentUser(c)
	var req quantityRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := a.deps.CartSvc.SetQuantity(c.Request.Context(), user.ID, c.Param("id"), req.Quantity)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart_item": toCartItemView(*item)})
}

func (a *api) deleteCartItem(c *gin.Context) {
	user, _ := currentUser(c)
	if err := a.deps.CartSvc.Remove(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
