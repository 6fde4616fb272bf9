package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/middleware"
	"github.com/obraplan/obraplan/internal/modules/serializer"
	"github.com/obraplan/obraplan/internal/modules/service"
)

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{svc: s}
}

type CreateProductReq struct {
	Description string                     `json:"description"`
	Value       string                     `json:"value" binding:"required"`
	Steps       []service.ProductStepInput `json:"steps" binding:"required,min=1,dive"`
}

// CreateProduct godoc
//
//	@Summary		Create product
//	@Description	Create a product template with its ordered steps
//	@Tags			product
//	@Accept			json
//	@Produce		json
//	@Param			body	body	CreateProductReq	true	"Product payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Product}
//	@Router			/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	req := CreateProductReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	product, err := h.svc.Create(c.Request.Context(), service.CreateProductInput{
		UserID:      p.UserID,
		Description: req.Description,
		Value:       req.Value,
		Steps:       req.Steps,
	})
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: product})
}

// ListProducts godoc
//
//	@Summary		List products
//	@Description	List the authenticated user's products with their steps
//	@Tags			product
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Product}
//	@Router			/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	products, err := h.svc.ListByUser(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: products})
}

// DeleteProduct godoc
//
//	@Summary		Delete product
//	@Description	Delete a product by its UUID. Fails if any project references it.
//	@Tags			product
//	@Produce		json
//	@Param			product_id	path	string	true	"Product ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/products/{product_id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p.UserID, productID); err != nil {
		c.JSON(serializer.FromErr(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "deleted"})
}
