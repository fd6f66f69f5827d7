package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AdminHTTP struct {
	Orders *service.OrderService
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	p := readPage(c)
	total, orders, err := h.Orders.AdminListOrders(ctx, c.QueryParam("status"), c.QueryParam("customer"), p.offset, p.limit)
	if err != nil {
		return fail(l, "admin_list_orders", "cannot list orders", err)
	}
	return c.JSON(http.StatusOK, pageResponse(p, total, orders))
}

func (h *AdminHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "admin_get_order", "id is not a uuid", err)
	}

	order, err := h.Orders.AdminGetOrder(ctx, id)
	if err != nil {
		return fail(l, "admin_get_order", "cannot get order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_status")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_status", "id is not a uuid", err)
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status", "invalid body", err)
	}

	order, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status", "cannot update order status", err)
	}

	l.Info("update_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.cancel_order")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "admin_cancel_order", "id is not a uuid", err)
	}

	order, err := h.Orders.AdminCancel(ctx, id)
	if err != nil {
		return fail(l, "admin_cancel_order", "cannot cancel order", err)
	}
	return c.JSON(http.StatusOK, order)
}
