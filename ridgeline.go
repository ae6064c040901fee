// Package ridgeline is the backend for the Ridgeline Builders marketing site:
// a JSON API serving blog posts, property listings, testimonials, newsletter
// signups, and contact forms, with a session-gated admin surface on top.
//
// Content lives in flat JSON files (see the store package); analytics page
// views go to a separate SQLite database so traffic writes never touch the
// content files.
package ridgeline

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ridgelinebuilders/ridgeline/analytics"
	"github.com/ridgelinebuilders/ridgeline/mailer"
	"github.com/ridgelinebuilders/ridgeline/store"
)

// App wires together the store, mailer, analytics, and HTTP layer.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *store.Store
	Mailer *mailer.Client

	loginLimiter   *LoginLimiter
	analyticsStore *analytics.Store
	stopCleanup    func()
}

// New creates an App with the given configuration. Call Start to open the
// store and begin serving.
func New(cfg SiteConfig) *App {
	cfg.setDefaults()
	return &App{
		Config: cfg,
		Echo:   echo.New(),
	}
}

// Start opens the data store, seeds the bootstrap admin, initializes
// analytics, and serves until the listener fails or the server is shut down.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("ridgeline: SessionSecret is required")
	}

	st, err := store.Open(a.Config.DataDir)
	if err != nil {
		return fmt.Errorf("ridgeline: open store: %w", err)
	}
	a.Store = st

	if err := a.Store.Users.EnsureDefaultAdmin(a.Config.DefaultAdminPassword); err != nil {
		return fmt.Errorf("ridgeline: seed admin user: %w", err)
	}

	a.Mailer = mailer.New(a.Config.Mail.Endpoint, a.Config.Mail.APIKey, a.Config.Mail.From)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("ridgeline: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		if err := analytics.InitSalt(analyticsStore); err != nil {
			return fmt.Errorf("ridgeline: init analytics salt: %w", err)
		}
		a.stopCleanup = analyticsStore.StartCleanupScheduler(a.Config.AnalyticsRetainDays, 24*time.Hour)
	}

	a.setupMiddleware()
	a.setupRoutes()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/robots.txt", a.handleRobots)

	api := e.Group("/api")

	api.GET("/health", a.handleHealth)

	// Public content
	api.GET("/blog", a.handleBlogList)
	api.GET("/blog/:slug", a.handleBlogGet)
	api.GET("/properties", a.handlePropertyList)
	api.GET("/properties/slug/:slug", a.handlePropertyGetBySlug)
	api.GET("/properties/:id", a.handlePropertyGet)
	api.GET("/testimonials", a.handleTestimonialList)

	// Newsletter
	api.POST("/newsletter", a.handleNewsletterSubscribe)
	api.GET("/newsletter/verify", a.handleNewsletterVerify)
	api.POST("/newsletter/unsubscribe", a.handleNewsletterUnsubscribe)

	// Forms
	api.POST("/contact", a.handleContactForm)
	api.POST("/booking", a.handleBookingForm)

	// Auth
	api.POST("/auth/login", a.handleLogin)
	api.POST("/auth/logout", a.handleLogout)
	api.GET("/auth/me", a.handleMe)

	// Admin content management, gated per permission
	api.POST("/blog", a.handleBlogCreate, a.requirePermission(store.PermBlogWrite))
	api.PUT("/blog/:slug", a.handleBlogUpdate, a.requirePermission(store.PermBlogWrite))
	api.DELETE("/blog/:slug", a.handleBlogDelete, a.requirePermission(store.PermBlogWrite))

	api.POST("/properties", a.handlePropertyCreate, a.requirePermission(store.PermPropertiesWrite))
	api.PUT("/properties/:id", a.handlePropertyUpdate, a.requirePermission(store.PermPropertiesWrite))
	api.DELETE("/properties/:id", a.handlePropertyDelete, a.requirePermission(store.PermPropertiesWrite))

	api.POST("/testimonials", a.handleTestimonialCreate, a.requirePermission(store.PermTestimonialsWrite))
	api.PUT("/testimonials/:id", a.handleTestimonialUpdate, a.requirePermission(store.PermTestimonialsWrite))
	api.DELETE("/testimonials/:id", a.handleTestimonialDelete, a.requirePermission(store.PermTestimonialsWrite))

	api.GET("/users", a.handleUserList, a.requirePermission(store.PermUsersManage))
	api.GET("/users/:id", a.handleUserGet, a.requirePermission(store.PermUsersManage))
	api.POST("/users", a.handleUserCreate, a.requirePermission(store.PermUsersManage))
	api.PUT("/users/:id", a.handleUserUpdate, a.requirePermission(store.PermUsersManage))
	api.DELETE("/users/:id", a.handleUserDelete, a.requirePermission(store.PermUsersManage))

	api.GET("/admin/newsletter", a.handleNewsletterList, a.requirePermission(store.PermUsersManage))

	if a.analyticsStore != nil {
		handler := analytics.NewHandler(a.analyticsStore)
		handler.RegisterRoutes(e, a.requirePermission(store.PermAnalyticsView))
	}
}

// Close releases the store and stops background workers. Call when shutting
// down.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}
