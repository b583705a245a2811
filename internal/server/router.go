package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"foodgram/internal/handlers"
	applog "foodgram/internal/log"
)

func newRouter(cfg Config, limiter *loginLimiter) http.Handler {
	ctx := context.Background()
	r := chi.NewRouter()

	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Disposition", requestIDHeader},
	}).Handler)
	r.Use(middleware.StripSlashes)
	r.Use(cfg.Metrics.Middleware)

	r.Get("/healthz", handlers.Health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	if cfg.MediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot))))
		applog.Debug(ctx, "route registered", "path", "/media/*", "static", true)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.Authenticate)

		r.Route("/auth/token", func(r chi.Router) {
			r.With(limiter.Middleware).Post("/login", handlers.Login)
			r.With(handlers.RequireAuthentication).Post("/logout", handlers.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handlers.ListUsers)
			r.Post("/", handlers.CreateUser)
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireAuthentication)
				r.Get("/me", handlers.Me)
				r.Post("/set_password", handlers.SetPassword)
				r.Get("/subscriptions", handlers.ListSubscriptions)
				r.Post("/{id}/subscribe", handlers.Subscribe)
				r.Delete("/{id}/subscribe", handlers.Unsubscribe)
			})
			r.Get("/{id}", handlers.GetUser)
		})

		r.Get("/tags", handlers.ListTags)
		r.Get("/tags/{id}", handlers.GetTag)
		r.Get("/ingredients", handlers.ListIngredients)
		r.Get("/ingredients/{id}", handlers.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", handlers.ListRecipes)
			r.Get("/{id}", handlers.GetRecipe)
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireAuthentication)
				r.Post("/", handlers.CreateRecipe)
				r.Get("/download_shopping_cart", handlers.DownloadShoppingCart)
				r.Patch("/{id}", handlers.UpdateRecipe)
				r.Delete("/{id}", handlers.DeleteRecipe)
				r.Post("/{id}/favorite", handlers.AddFavorite)
				r.Delete("/{id}/favorite", handlers.RemoveFavorite)
				r.Post("/{id}/shopping_cart", handlers.AddToShoppingCart)
				r.Delete("/{id}/shopping_cart", handlers.RemoveFromShoppingCart)
			})
		})
	})

	applog.Debug(ctx, "http routes registered")
	return r
}
