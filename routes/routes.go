package routes

import (
	"net/http"

	"food-storefront/controllers"
	"food-storefront/middlewares"
	"food-storefront/mock"
	"food-storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the router exposes.
type Deps struct {
	Menu          *services.Menu
	Cart          *services.Cart
	Subscriptions *services.Subscriptions
	Catering      *services.Catering
	Accounts      *services.Accounts
	Admin         *services.Admin

	AdminToken   string
	RateLimiter  *middlewares.RateLimiter
	SecureCookie bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.RequestLogger(), middlewares.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/mock", mock.FS())

	menu := controllers.NewMenuController(d.Menu)
	cart := controllers.NewCartController(d.Cart, d.Accounts)
	subs := controllers.NewSubscriptionController(d.Subscriptions, d.Accounts)
	catering := controllers.NewCateringController(d.Catering)
	auth := controllers.NewAuthController(d.Accounts, d.SecureCookie)
	account := controllers.NewAccountController(d.Accounts)
	admin := controllers.NewAdminController(d.Admin)

	api := r.Group("/api")
	api.Use(d.RateLimiter.Middleware(), middlewares.Visitor(), middlewares.OptionalAuth(d.Accounts))
	{
		api.GET("/menu", menu.DailyMenu)
		api.GET("/menu/:id", menu.GetItem)
		api.GET("/how-it-works", menu.HowItWorks)

		api.GET("/cart", cart.Get)
		api.POST("/cart/items", cart.AddItem)
		api.PATCH("/cart/items/:id", cart.UpdateQuantity)
		api.DELETE("/cart/items/:id", cart.RemoveItem)
		api.DELETE("/cart", cart.Clear)
		api.POST("/cart/checkout", cart.Checkout)

		api.GET("/subscriptions/plans", subs.Plans)
		api.GET("/subscriptions/selection", subs.Selection)
		api.PUT("/subscriptions/selection", subs.Select)
		api.DELETE("/subscriptions/selection", subs.ClearSelection)
		api.POST("/subscriptions/checkout", subs.Checkout)

		api.GET("/catering/event-types", menu.EventTypes)
		api.GET("/catering", catering.Draft)
		api.PATCH("/catering", catering.Update)
		api.DELETE("/catering", catering.Reset)
		api.POST("/catering/menu-items/toggle", catering.ToggleMenuItem)
		api.POST("/catering/validate/:step", catering.ValidateStep)
		api.POST("/catering/next", catering.Next)
		api.POST("/catering/back", catering.Back)
		api.PUT("/catering/step", catering.SetStep)
		api.POST("/catering/submit", catering.Submit)

		api.POST("/auth/login", auth.Login)
		api.POST("/auth/logout", auth.Logout)
	}

	acct := api.Group("/account")
	acct.Use(middlewares.AuthMiddleware(d.Accounts))
	{
		acct.GET("", account.Get)
		acct.POST("/refresh", account.Refresh)
		acct.PATCH("/profile", account.UpdateProfile)
		acct.PATCH("/preferences", account.UpdatePreferences)
		acct.PATCH("/settings", account.UpdateSettings)
		acct.POST("/payment-methods", account.AddPaymentMethod)
		acct.DELETE("/payment-methods/:id", account.RemovePaymentMethod)
		acct.PUT("/payment-methods/:id/default", account.SetDefaultPaymentMethod)
	}

	adm := api.Group("/admin")
	adm.Use(middlewares.AdminToken(d.AdminToken))
	{
		adm.GET("/overview", admin.Overview)
		adm.GET("/users", admin.Users)
		adm.POST("/users/:id/status", admin.SetUserStatus)
		adm.GET("/orders", admin.Orders)
		adm.PATCH("/orders/:id", admin.SetOrderStatus)
		adm.GET("/subscriptions", admin.Subscriptions)
		adm.PATCH("/subscriptions/:id", admin.SetSubscriptionStatus)
		adm.GET("/menu", admin.MenuItems)
		adm.POST("/menu/:id/toggle", admin.ToggleMenuItem)
		adm.GET("/catering-requests", admin.CateringRequests)
	}

	return r
}
