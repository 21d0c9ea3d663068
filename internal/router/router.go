package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-pricing/internal/handler"
	"github.com/iliyamo/rental-pricing/internal/middleware"
)

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, tablesVersion string) {
	e.GET("/healthz", handler.Health(tablesVersion))
}

// RegisterPricing registers the public pricing and market routes. mw is
// applied to every route of the group, typically the rate limiter followed
// by the response cache.
func RegisterPricing(e *echo.Echo, h *handler.PricingHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	g.POST("/pricing/quote", h.Quote)
	g.GET("/pricing/calendar", h.Calendar)

	g.GET("/market/benchmarks/:area", h.Benchmark)
	g.GET("/market/forecast", h.Forecast)
	g.GET("/market/seasons", h.Seasons)
	g.GET("/market/areas", h.Areas)
}

// RegisterOwnerPricing registers OWNER-scoped routes that price stored
// listings. All routes require a valid JWT and the OWNER role.
func RegisterOwnerPricing(e *echo.Echo, h *handler.PropertyPricingHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner),
	}, mw...)
	g := e.Group("/v1", chain...)

	g.GET("/properties/:id/pricing-calendar", h.PricingCalendar)
	g.GET("/properties/:id/market-comparison", h.MarketComparison)
	g.GET("/owner/forecast", h.OwnerForecast)
}
