package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product", "id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", "cannot get product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// GetProducts serves the storefront listing, which hides unavailable products.
func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	return h.listProducts(c, true)
}

// AdminGetProducts lists every product, available or not.
func (h *CatalogHTTP) AdminGetProducts(c echo.Context) error {
	return h.listProducts(c, false)
}

func (h *CatalogHTTP) listProducts(c echo.Context, availableOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	p := readPage(c)
	f := repo.ProductFilter{
		Category:      c.QueryParam("category"),
		Search:        c.QueryParam("search"),
		Sort:          c.QueryParam("sort"),
		AvailableOnly: availableOnly,
	}

	total, items, err := h.Svc.ListProducts(ctx, f, p.offset, p.limit)
	if err != nil {
		return fail(l, "get_products", "cannot list products", err)
	}

	l.Info("get_products_success", "total", total)
	return c.JSON(http.StatusOK, pageResponse(p, total, items))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	p := readPage(c)
	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search_products", "cannot search products", err)
	}
	return c.JSON(http.StatusOK, pageResponse(p, total, items))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create", "invalid body", err)
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create", "cannot add product to db", err)
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch", "id is not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch", "invalid body", err)
	}

	prod, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		return fail(l, "product_patch", "cannot update product", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete", "id is not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete", "cannot delete product from db", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) RateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.rate")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("rate_product_error", "status", 401, "error", err)
		return errUnauthorized
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "rate_product", "id is not a uuid", err)
	}

	var req transport.RateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "rate_product", "invalid body", err)
	}

	prod, err := h.Svc.RateProduct(ctx, userID, id, req.Rating, req.Review)
	if err != nil {
		return fail(l, "rate_product", "cannot rate product", err)
	}

	l.Info("rate_product_success", "product_id", id, "rating", req.Rating)
	return c.JSON(http.StatusOK, prod)
}
