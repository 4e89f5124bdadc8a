package api

import (
	"net/http"
	"parcel-service/internal/api/handlers"
	"parcel-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(parcels *services.ParcelService, payments *services.PaymentService, corsOrigin string) http.Handler {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		loggingMiddleware(),
		metricsMiddleware(),
		corsMiddleware(corsOrigin),
	)

	parcelHandler := &handlers.ParcelHandler{Service: parcels}
	paymentHandler := &handlers.PaymentHandler{Service: payments}

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/parcels", parcelHandler.List)
	r.POST("/parcels", parcelHandler.Create)
	r.GET("/parcels/:id", parcelHandler.Get)
	r.PUT("/parcels/:id", parcelHandler.Update)
	r.DELETE("/parcels/:id", parcelHandler.Delete)
	r.POST("/parcels/:id/paid", parcelHandler.MarkPaid)

	r.POST("/create-payment-intent", paymentHandler.CreateIntent)
	r.POST("/payments/history", paymentHandler.RecordHistory)
	r.GET("/payments/user/:email", paymentHandler.ListByUser)
	r.GET("/payments/all", paymentHandler.ListAll)

	return r
}
