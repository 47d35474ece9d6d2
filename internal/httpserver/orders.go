package httpserver

import (
	"net/http"

	ordersvc "cartify/internal/service/order"
	"github.com/gin-gonic/gin"
)

func (a *api) createOrder(c *gin.Context) {
	user, _ := currentUser(c)
	var in ordersvc.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := a.deps.OrderSvc.Create(c.Request.Context(), user, in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": toOrderView(*order)})
}

func (a *api) listOrders(c *gin.Context) {
	user, _ := currentUser(c)
	orders, err := a.deps.OrderSvc.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(orders)})
}

func (a *api) getOrder(c *gin.Context) {
	user, _ := currentUser(c)
	order, err := a.deps.OrderSvc.GetForUser(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderView(*order)})
}
