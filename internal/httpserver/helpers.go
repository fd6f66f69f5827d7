package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")

func GetID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}
	return userID, nil
}

func paramID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

type pageQuery struct {
	page, offset, limit int
}

func readPage(c echo.Context) pageQuery {
	page := util.ClampPage(util.ParseIntDefault(c.QueryParam("page"), 1))
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	return pageQuery{page: page, offset: offset, limit: limit}
}

func pageResponse(p pageQuery, total int64, data any) map[string]any {
	return map[string]any{
		"data": data,
		"meta": transport.NewPageMeta(p.page, p.offset, p.limit, total),
	}
}
