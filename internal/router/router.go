package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/sellerhub/backend/api/handler"
)

type Handlers struct {
	Product *apiHandler.ProductHandler
	Order   *apiHandler.OrderHandler
	Delta   *apiHandler.DeltaHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, actorMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Delta sync
	r.GET("/api/v1/delta/changes", actorMiddleware(handlers.Delta.Changes))
	r.GET("/api/v1/presence", actorMiddleware(handlers.Delta.Presence))

	// Products
	r.POST("/api/v1/products", actorMiddleware(handlers.Product.Create))
	r.GET("/api/v1/products/{id}", actorMiddleware(handlers.Product.Get))
	r.PUT("/api/v1/products/{id}", actorMiddleware(handlers.Product.Update))
	r.DELETE("/api/v1/products/{id}", actorMiddleware(handlers.Product.Delete))
	r.GET("/api/v1/products/{id}/versions", actorMiddleware(handlers.Product.Versions))

	// Orders
	r.POST("/api/v1/orders", actorMiddleware(handlers.Order.Create))
	r.GET("/api/v1/orders/{id}", actorMiddleware(handlers.Order.Get))
	r.PUT("/api/v1/orders/{id}", actorMiddleware(handlers.Order.Update))
	r.PUT("/api/v1/orders/{id}/status", actorMiddleware(handlers.Order.UpdateStatus))
	r.POST("/api/v1/orders/{id}/cancel", actorMiddleware(handlers.Order.Cancel))
	r.POST("/api/v1/orders/{id}/refund", actorMiddleware(handlers.Order.Refund))
	r.GET("/api/v1/orders/{id}/history", actorMiddleware(handlers.Order.History))

	return r
}
