package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmezhova/online-shop/internal/repo"
	"github.com/kmezhova/online-shop/internal/util"
)

type PageHandler struct {
	Repo *repo.GormRepo
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *PageHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", echo.Map{"Year": time.Now().Year()})
}

func (h *PageHandler) Product(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, _, err := h.Repo.Products(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "product.html", echo.Map{
		"Year":     time.Now().Year(),
		"Products": products,
	})
}

func (h *PageHandler) Categories(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, _, err := h.Repo.Products(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Render(http.StatusOK, "categories.html", echo.Map{
		"Year":     time.Now().Year(),
		"Products": products,
	})
}

func (h *PageHandler) Success(c echo.Context) error {
	return c.Render(http.StatusOK, "success.html", echo.Map{"Year": time.Now().Year()})
}

func (h *PageHandler) Cancel(c echo.Context) error {
	return c.Render(http.StatusOK, "cancel.html", echo.Map{"Year": time.Now().Year()})
}
