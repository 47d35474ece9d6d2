package httpserver

import (
	"net/http"

	categorysvc "cartify/internal/service/category"
	productsvc "cartify/internal/service/product"
	"github.com/gin-gonic/gin"
)

func (a *api) listProducts(c *gin.Context) {
	products, err := a.deps.ProductSvc.List(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductViews(products)})
}

func (a *api) getProduct(c *gin.Context) {
	p, err := a.deps.ProductSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductView(*p)})
}

func (a *api) createProduct(c *gin.Context) {
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := a.deps.ProductSvc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": toProductView(*p)})
}

func (a *api) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := a.deps.ProductSvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductView(*p)})
}

func (a *api) deleteProduct(c *gin.Context) {
	if err := a.deps.ProductSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) listCategories(c *gin.Context) {
	categories, err := a.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (a *api) getCategory(c *gin.Context) {
	cat, err := a.deps.CategorySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func (a *api) createCategory(c *gin.Context) {
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := a.deps.CategorySvc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

func (a *api) updateCategory(c *gin.Context) {
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := a.deps.CategorySvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat})
}

func (a *api) deleteCategory(c *gin.Context) {
	if err := a.deps.CategorySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, a.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
