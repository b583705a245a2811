// Package handlers implements the JSON API. Dependencies are installed once
// with Configure and shared by every handler.
package handlers

import (
	"context"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/cache"
	"foodgram/internal/catalog"
	"foodgram/internal/collections"
	"foodgram/internal/config"
	applog "foodgram/internal/log"
	"foodgram/internal/media"
	"foodgram/internal/metrics"
	"foodgram/internal/recipes"
	"foodgram/internal/subscriptions"
	"foodgram/internal/users"
)

// Media stores recipe images and resolves their public URLs.
type Media interface {
	recipes.ImageStore
	URL(key string) string
}

type services struct {
	users         *users.Service
	subscriptions *subscriptions.Service
	recipes       *recipes.Service
	catalog       *catalog.Service
	favorites     *collections.Store
	cart          *collections.Store
	media         Media
	metrics       *metrics.Metrics
	rules         config.RecipeRules
}

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	app            *services
)

type options struct {
	rules    config.RecipeRules
	media    Media
	metrics  *metrics.Metrics
	cache    cache.Cache
	hashCost int
}

// Option customises Configure.
type Option func(*options)

// WithRecipeRules sets the recipe floors and page size.
func WithRecipeRules(rules config.RecipeRules) Option {
	return func(o *options) { o.rules = rules }
}

// WithMedia sets the recipe image store.
func WithMedia(m Media) Option {
	return func(o *options) { o.media = m }
}

// WithMetrics sets the metrics the handlers report to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCache sets the reference data cache.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithPasswordHashCost overrides the bcrypt cost used for new passwords.
func WithPasswordHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

// Configure installs the shared dependencies used by the HTTP handlers.
// Passing a nil database clears them.
func Configure(sm *scs.SessionManager, db *gorm.DB, opts ...Option) {
	sessionManager = sm
	database = db
	if db == nil {
		app = nil
		return
	}

	o := options{
		rules:    config.DefaultRecipeRules(),
		cache:    cache.Noop{},
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.media == nil {
		o.media = media.NewStore(media.NewFilesystem("media", "/media/"), o.rules.MaxImageSide)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}

	subs := subscriptions.NewService(db)
	favorites := collections.New(db, collections.Favorites)
	cart := collections.New(db, collections.ShoppingCart)

	app = &services{
		users:         users.NewService(db, users.WithHashCost(o.hashCost)),
		subscriptions: subs,
		catalog:       catalog.NewService(db, o.cache),
		favorites:     favorites,
		cart:          cart,
		media:         o.media,
		metrics:       o.metrics,
		rules:         o.rules,
		recipes: recipes.NewService(db, recipes.Dependencies{
			Rules:         o.rules,
			Images:        o.media,
			Favorites:     favorites,
			ShoppingCart:  cart,
			Subscriptions: subs,
		}),
	}
	applog.Debug(context.Background(), "handler dependencies configured",
		"pageSize", o.rules.PageSize,
		"minCookingTime", o.rules.MinCookingTime,
		"minIngredientAmount", o.rules.MinIngredientAmount,
	)
}
