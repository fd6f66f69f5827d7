package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401, "error", err)
		return errUnauthorized
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart", "cannot load cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 401, "error", err)
		return errUnauthorized
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}

	cart, err := h.Svc.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart", "cannot add item to cart", err)
	}

	l.Info("item added to cart", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("update_cart_item_error", "status", 401, "error", err)
		return errUnauthorized
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_cart_item", "item id is not a uuid", err)
	}

	var req transport.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item", "invalid body", err)
	}

	cart, err := h.Svc.UpdateItemQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item", "cannot update cart item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("remove_cart_item_error", "status", 401, "error", err)
		return errUnauthorized
	}
	itemID, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "remove_cart_item", "item id is not a uuid", err)
	}

	cart, err := h.Svc.RemoveItem(ctx, userID, itemID)
	if err != nil {
		return fail(l, "remove_cart_item", "cannot remove cart item", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_product")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("remove_cart_product_error", "status", 401, "error", err)
		return errUnauthorized
	}
	productID, err := paramID(c, "product_id")
	if err != nil {
		return badRequest(l, "remove_cart_product", "product id is not a uuid", err)
	}

	cart, err := h.Svc.RemoveProduct(ctx, userID, productID)
	if err != nil {
		return fail(l, "remove_cart_product", "cannot remove product from cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("clear_cart_error", "status", 401, "error", err)
		return errUnauthorized
	}

	cart, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		return fail(l, "clear_cart", "cannot clear cart", err)
	}

	l.Info("cart cleared")
	return c.JSON(http.StatusOK, cart)
}
