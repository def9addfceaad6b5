package router

import (
	"github.com/nanayawb/kentecart/internal/logger"
	"github.com/nanayawb/kentecart/internal/middleware"
	"github.com/nanayawb/kentecart/internal/order"
	"github.com/nanayawb/kentecart/internal/payment"
	"github.com/nanayawb/kentecart/internal/product"
	"github.com/nanayawb/kentecart/internal/promo"
	"github.com/nanayawb/kentecart/internal/user"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	userH *user.Handler,
	productH *product.Handler,
	orderH *order.Handler,
	promoH *promo.Handler,
	paymentH *payment.Handler,
	jwtSecret []byte,
	userRepo middleware.UserFinder,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	r.Use(middleware.GzipHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productH.List)
		r.Get("/products/{id}", productH.Get)

		r.Post("/orders", orderH.Create)
		r.Get("/orders", orderH.ListByEmail)
		r.Get("/orders/track", orderH.Track)
		r.Post("/orders/{number}/cancel", orderH.Cancel)

		r.Post("/payments/initialize", paymentH.Initialize)
		r.Get("/payments/verify/{reference}", paymentH.Verify)
		r.Post("/payments/webhook", paymentH.Webhook)

		r.Post("/staff/login", userH.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(jwtSecret, userRepo))

		r.Post("/api/staff/users", userH.CreateStaff)

		r.Get("/api/staff/products", productH.ListAll)
		r.Post("/api/staff/products", productH.Create)
		r.Put("/api/staff/products/{id}", productH.Update)
		r.Delete("/api/staff/products/{id}", productH.Delete)
		r.Put("/api/staff/products/{id}/stock", productH.AdjustStock)

		r.Get("/api/staff/orders", orderH.List)
		r.Put("/api/staff/orders/{number}/status", orderH.UpdateStatus)

		r.Get("/api/staff/promos", promoH.List)
		r.Post("/api/staff/promos", promoH.Create)
		r.Put("/api/staff/promos", promoH.Update)
	})

	return r
}
