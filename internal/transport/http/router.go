package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/kmezhova/online-shop/internal/handlers"
	"github.com/kmezhova/online-shop/internal/handlers/cart"
)

type Deps struct {
	PageHandler   *handlers.PageHandler
	AuthHandler   *handlers.AuthHandler
	CartHandler   *cart.CartHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/", d.PageHandler.Home)
	e.GET("/product", d.PageHandler.Product)
	e.GET("/categories", d.PageHandler.Categories)
	e.GET("/success", d.PageHandler.Success)
	e.GET("/cancel", d.PageHandler.Cancel)

	e.GET("/login", d.AuthHandler.LoginPage)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/register", d.AuthHandler.RegisterPage)
	e.POST("/register", d.AuthHandler.Register)
	e.GET("/logout", d.AuthHandler.Logout)

	e.POST("/add_to_cart", d.CartHandler.AddToCart)
	e.GET("/add_after_log_or_reg", d.CartHandler.Claim)
	e.GET("/cart", d.CartHandler.GetCart)
	e.POST("/cart", d.CartHandler.GetCart)
	e.GET("/i_qty", d.CartHandler.IncrementQty)
	e.GET("/d_qty", d.CartHandler.DecrementQty)
	e.GET("/delete", d.CartHandler.Delete)
	e.POST("/create-checkout-session", d.CartHandler.CreateCheckoutSession)

	e.GET("/search", d.SearchHandler.Handler)
}
