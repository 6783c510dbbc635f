package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bodega/internal/auth"
	"bodega/internal/product"
	purchasectrl "bodega/internal/purchase/controller"
)

func NewRouter(
	authCtrl *auth.Controller,
	authMW *auth.Middleware,
	productCtrl *product.Controller,
	purchaseCtrl *purchasectrl.Controller,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "route not found",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "bodega inventory API",
				"endpoints": map[string]string{
					"auth":      "/api/auth",
					"products":  "/api/products",
					"purchases": "/api/purchases",
				},
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authCtrl.Register)
			r.Post("/login", authCtrl.Login)
			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)
				r.Get("/me", authCtrl.Me)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireAdmin)
			r.Get("/", productCtrl.HandleList)
			r.Post("/", productCtrl.HandleCreate)
			r.Get("/{id}", productCtrl.HandleGet)
			r.Put("/{id}", productCtrl.HandleUpdate)
			r.Delete("/{id}", productCtrl.HandleDelete)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Post("/", purchaseCtrl.HandleCreate)
			r.Get("/my-purchases", purchaseCtrl.HandleMyPurchases)
			r.Get("/invoice/{id}", purchaseCtrl.HandleInvoice)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequireAdmin)
				r.Get("/all", purchaseCtrl.HandleAll)
			})
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
