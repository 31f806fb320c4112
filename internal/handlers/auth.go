package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmezhova/online-shop/internal/flash"
	"github.com/kmezhova/online-shop/internal/logging"
	"github.com/kmezhova/online-shop/internal/mykafka"
	"github.com/kmezhova/online-shop/internal/repo"
	"github.com/kmezhova/online-shop/internal/service/token"
)

type AuthHandler struct {
	Repo     *repo.GormRepo
	Tokens   *token.Service
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

// pendingItem reads the pending-claim token threaded through the form or the
// query string.
func pendingItem(c echo.Context) string {
	if v := c.FormValue("item_id"); v != "" {
		return v
	}
	return c.QueryParam("item_id")
}

// afterAuth is the redirect target once a session has been started: the claim
// endpoint when a pending item is threaded through, the cart otherwise.
func afterAuth(itemID string) string {
	if itemID != "" {
		return "/add_after_log_or_reg?item_id=" + url.QueryEscape(itemID)
	}
	return "/cart"
}

func formTarget(path, itemID string) string {
	if itemID != "" {
		return path + "?item_id=" + url.QueryEscape(itemID)
	}
	return path
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{
		"Year":   time.Now().Year(),
		"Flash":  flash.Pop(c),
		"ItemID": pendingItem(c),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	itemID := pendingItem(c)

	user, err := h.Repo.Authenticate(c.Request().Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUnknownEmail):
			flash.Set(c, "That email does not exist, please try again.")
		case errors.Is(err, repo.ErrBadPassword):
			flash.Set(c, "Password incorrect, please try again.")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.Redirect(http.StatusFound, formTarget("/login", itemID))
	}

	if err := h.Tokens.StartSession(c, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.Redirect(http.StatusFound, afterAuth(itemID))
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", echo.Map{
		"Year":   time.Now().Year(),
		"Flash":  flash.Pop(c),
		"ItemID": pendingItem(c),
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	email := c.FormValue("email")
	name := c.FormValue("name")
	password := c.FormValue("password")
	itemID := pendingItem(c)

	user, err := h.Repo.CreateUser(c.Request().Context(), email, name, password)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			flash.Set(c, "You've already signed up with that email, log in instead!")
			return c.Redirect(http.StatusFound, formTarget("/login", itemID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.Tokens.StartSession(c, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.Redirect(http.StatusFound, afterAuth(itemID))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if userID, ok := h.Tokens.CurrentUser(c); ok {
		h.publish(c, map[string]any{
			"type":   "user_logged_out",
			"userID": userID,
		})
	}
	h.Tokens.EndSession(c)
	return c.Redirect(http.StatusFound, "/")
}
