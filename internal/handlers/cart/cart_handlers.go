package cart

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmezhova/online-shop/internal/flash"
	"github.com/kmezhova/online-shop/internal/mykafka"
	"github.com/kmezhova/online-shop/internal/payment"
	"github.com/kmezhova/online-shop/internal/repo"
	"github.com/kmezhova/online-shop/internal/service/token"
)

type CartHandler struct {
	Repo     *repo.GormRepo
	Tokens   *token.Service
	Producer *mykafka.Producer
	Gateway  payment.CheckoutGateway
}

// AddToCart creates the line for the posted form. Authenticated visitors get
// the line claimed immediately; anonymous visitors are sent to the login form
// with the pending-claim token threaded through.
func (h *CartHandler) AddToCart(c echo.Context) error {
	name := c.FormValue("product-name")
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if name == "" || err != nil || price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product form")
	}

	qty, err := strconv.ParseUint(c.FormValue("qty"), 10, 32)
	if err != nil || qty < 1 {
		qty = 1
	}

	userID, authed := h.Tokens.CurrentUser(c)

	if authed {
		item, err := h.Repo.AddItem(c.Request().Context(), name, price, uint(qty), &userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.publish(c, map[string]any{
			"type":   "cart_item_added",
			"userID": userID,
			"itemID": item.ID,
			"name":   item.Name,
		})
		return c.Redirect(http.StatusFound, "/cart")
	}

	item, err := h.Repo.AddItem(c.Request().Context(), name, price, uint(qty), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusFound, "/login?item_id="+url.QueryEscape(item.ClaimToken))
}

// Claim performs the one-time attachment of the pending line to the account
// that just authenticated. An unresolvable token falls back to the home page;
// that branch is deliberate, not an error surface.
func (h *CartHandler) Claim(c echo.Context) error {
	userID, authed := h.Tokens.CurrentUser(c)
	if !authed {
		return c.Redirect(http.StatusFound, "/login")
	}

	item, err := h.Repo.ClaimItem(c.Request().Context(), c.QueryParam("item_id"), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return c.Redirect(http.StatusFound, "/")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_claimed",
		"userID": userID,
		"itemID": item.ID,
	})
	return c.Redirect(http.StatusFound, "/cart")
}

// GetCart shows the claimed lines of the current account. Anonymous visitors
// see the login page instead of a 401.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, authed := h.Tokens.CurrentUser(c)
	if !authed {
		return c.Render(http.StatusOK, "login.html", echo.Map{
			"Year":   time.Now().Year(),
			"Flash":  flash.Pop(c),
			"ItemID": "",
		})
	}

	// A session cookie can outlive its account row; treat that as signed out.
	user, err := h.Repo.UserByID(c.Request().Context(), userID)
	if err != nil {
		h.Tokens.EndSession(c)
		return c.Render(http.StatusOK, "login.html", echo.Map{
			"Year":   time.Now().Year(),
			"Flash":  flash.Pop(c),
			"ItemID": "",
		})
	}

	total, count, items, err := h.Repo.CartSummary(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Render(http.StatusOK, "cart.html", echo.Map{
		"Year":  time.Now().Year(),
		"Name":  user.Name,
		"Items": items,
		"Total": total,
		"Count": count,
	})
}

func (h *CartHandler) IncrementQty(c echo.Context) error {
	userID, id, err := h.mutationTarget(c)
	if err != nil {
		return err
	}

	item, err := h.Repo.IncrementQty(c.Request().Context(), id, userID)
	if err != nil {
		return notFoundOrInternal(err)
	}

	h.publish(c, map[string]any{
		"type":     "cart_qty_changed",
		"userID":   userID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHandler) DecrementQty(c echo.Context) error {
	userID, id, err := h.mutationTarget(c)
	if err != nil {
		return err
	}

	item, err := h.Repo.DecrementQty(c.Request().Context(), id, userID)
	if err != nil {
		return notFoundOrInternal(err)
	}

	h.publish(c, map[string]any{
		"type":     "cart_qty_changed",
		"userID":   userID,
		"itemID":   item.ID,
		"quantity": item.Quantity,
	})
	return c.Redirect(http.StatusFound, "/cart")
}

func (h *CartHandler) Delete(c echo.Context) error {
	userID, id, err := h.mutationTarget(c)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteItem(c.Request().Context(), id, userID); err != nil {
		return notFoundOrInternal(err)
	}

	h.publish(c, map[string]any{
		"type":   "cart_item_deleted",
		"userID": userID,
		"itemID": id,
	})
	return c.Redirect(http.StatusFound, "/cart")
}

// CreateCheckoutSession hands the posted cart total to the payment provider
// and redirects the browser to the hosted checkout page. Provider failures
// are returned verbatim as the response body.
func (h *CartHandler) CreateCheckoutSession(c echo.Context) error {
	total, err := strconv.ParseFloat(c.FormValue("total"), 64)
	if err != nil || total <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid total")
	}

	checkoutURL, err := h.Gateway.CreateCheckoutSession(c.Request().Context(), total)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if userID, ok := h.Tokens.CurrentUser(c); ok {
		h.publish(c, map[string]any{
			"type":   "checkout_created",
			"userID": userID,
			"total":  total,
		})
	}
	return c.Redirect(http.StatusSeeOther, checkoutURL)
}
