package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmezhova/online-shop/internal/logging"
	"github.com/kmezhova/online-shop/internal/repo"
)

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

// mutationTarget resolves the current account and the referenced line id for
// quantity and delete operations. Every mutation carries both: the repo layer
// only acts on lines owned by the caller.
func (h *CartHandler) mutationTarget(c echo.Context) (userID uint, itemID uint, err error) {
	userID, authed := h.Tokens.CurrentUser(c)
	if !authed {
		return 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	id, perr := strconv.ParseUint(c.QueryParam("item_id"), 10, 32)
	if perr != nil || id == 0 {
		return 0, 0, echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	return userID, uint(id), nil
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
