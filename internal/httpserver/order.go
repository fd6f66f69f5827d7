package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Checkout *service.CheckoutService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return errUnauthorized
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout", "invalid body", err)
	}

	order, err := h.Checkout.Checkout(ctx, userID, req)
	if err != nil {
		return fail(l, "checkout", "cannot place order", err)
	}

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("list_orders_error", "status", 401, "error", err)
		return errUnauthorized
	}

	p := readPage(c)
	total, orders, err := h.Svc.ListOrders(ctx, userID, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_orders", "cannot list orders", err)
	}
	return c.JSON(http.StatusOK, pageResponse(p, total, orders))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "error", err)
		return errUnauthorized
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order", "cannot get order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("cancel_order_error", "status", 401, "error", err)
		return errUnauthorized
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order", "id is not a uuid", err)
	}

	order, err := h.Svc.Cancel(ctx, userID, id)
	if err != nil {
		return fail(l, "cancel_order", "cannot cancel order", err)
	}

	l.Info("cancel_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}
