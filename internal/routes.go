package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "landkit/api/v1"
	"landkit/internal/config"
	"landkit/internal/http"
	"landkit/internal/http/middleware"
)

// publicCORSConfig is shared by all public endpoints: landings are
// embedded and tracked from arbitrary origins.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting only in production; it would interfere with tests.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// 70 req/min per IP absorbs legitimate visitor traffic on popular
	// landings while blunting scripted abuse.
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(70),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter limit on credential endpoints against brute force.
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Public ingestion config: CORS first so rejections still carry
	// CORS headers. Sec-Fetch-Site checks are off because submissions
	// legitimately arrive cross-site from published landings.
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		WriteConcurrency:   false,
		CustomMiddleware:   []fiber.Handler{publicRateLimiter},
		CORSConfig:         publicCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	authConfig := &cartridge.RouteConfig{
		CustomMiddleware:   []fiber.Handler{authRateLimiter},
		EnableSecFetchSite: cartridge.Bool(false),
	}

	logger := srv.GetLogger()
	requireAuth := middleware.RequireAuth(cfg.JWTSecret, logger)

	protectedConfig := &cartridge.RouteConfig{
		CustomMiddleware:   []fiber.Handler{requireAuth},
		EnableSecFetchSite: cartridge.Bool(false),
	}

	adminConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
	}

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === PUBLIC INGESTION ===
	srv.Post("/api/v1/submit-lead", v1.SubmitLeadHandler, publicAPIConfig)
	srv.Options("/api/v1/submit-lead", preflight, publicAPIConfig)
	srv.Post("/api/v1/track-product-click", v1.TrackProductClickHandler, publicAPIConfig)
	srv.Options("/api/v1/track-product-click", preflight, publicAPIConfig)

	// === PUBLIC LANDING DELIVERY ===
	srv.Get("/api/v1/l/:slug", v1.PublicLandingHandler, publicAPIConfig)
	srv.Post("/api/v1/landings/:id/increment-views", v1.IncrementViewsHandler, publicAPIConfig)
	srv.Options("/api/v1/landings/:id/increment-views", preflight, publicAPIConfig)

	// === PUBLIC SLUG UTILITIES ===
	srv.Get("/api/v1/utils/check-slug/:slug", v1.CheckSlugHandler, publicAPIConfig)
	srv.Post("/api/v1/utils/generate-slug", v1.GenerateSlugHandler, publicAPIConfig)

	// === AUTH ===
	srv.Post("/api/v1/auth/register", http.RegisterAction, authConfig)
	srv.Post("/api/v1/auth/login", http.LoginAction, authConfig)
	srv.Get("/api/v1/auth/me", http.MeAction, protectedConfig)
	srv.Post("/api/v1/auth/refresh", http.RefreshAction, protectedConfig)
	srv.Post("/api/v1/auth/logout", http.LogoutAction, protectedConfig)

	// === LANDINGS (owner) ===
	srv.Get("/api/v1/landings", http.LandingsIndexAction, protectedConfig)
	srv.Post("/api/v1/landings", http.LandingsCreateAction, protectedConfig)
	srv.Get("/api/v1/landings/:id", http.LandingsShowAction, protectedConfig)
	srv.Put("/api/v1/landings/:id", http.LandingsUpdateAction, protectedConfig)
	srv.Delete("/api/v1/landings/:id", http.LandingsDeleteAction, protectedConfig)
	srv.Post("/api/v1/landings/:id/duplicate", http.LandingsDuplicateAction, protectedConfig)
	srv.Get("/api/v1/landings/:id/analytics", http.LandingsAnalyticsAction, protectedConfig)

	// === PRODUCT ANALYTICS (owner) ===
	srv.Get("/api/v1/product-analytics/landing/:id/stats", http.LandingClickStatsAction, protectedConfig)
	srv.Get("/api/v1/product-analytics/global-stats", http.GlobalClickStatsAction, protectedConfig)
	srv.Get("/api/v1/product-analytics/landing/:id/product/:productName", http.ProductDetailAction, protectedConfig)

	// === LEADS (owner) ===
	srv.Get("/api/v1/leads", http.LeadsIndexAction, protectedConfig)
	srv.Get("/api/v1/leads/stats", http.LeadsStatsAction, protectedConfig)
	srv.Get("/api/v1/leads/export", http.LeadsExportAction, protectedConfig)
	srv.Get("/api/v1/leads/:id", http.LeadsShowAction, protectedConfig)
	srv.Put("/api/v1/leads/:id", http.LeadsUpdateAction, protectedConfig)
	srv.Delete("/api/v1/leads/:id", http.LeadsDeleteAction, protectedConfig)

	// === DASHBOARD (owner) ===
	srv.Get("/api/v1/dashboard/stats", http.DashboardStatsAction, protectedConfig)

	// === TEMPLATES (catalog management, unauthenticated) ===
	srv.Get("/api/v1/templates", http.TemplatesIndexAction, adminConfig)
	srv.Post("/api/v1/templates", http.TemplatesCreateAction, adminConfig)
	srv.Get("/api/v1/templates/free", http.TemplatesFreeAction, adminConfig)
	srv.Get("/api/v1/templates/premium", http.TemplatesPremiumAction, adminConfig)
	srv.Get("/api/v1/templates/:id", http.TemplatesShowAction, adminConfig)
	srv.Put("/api/v1/templates/:id", http.TemplatesUpdateAction, adminConfig)
	srv.Delete("/api/v1/templates/:id", http.TemplatesDeleteAction, adminConfig)
}

func preflight(ctx *cartridge.Context) error {
	return ctx.SendStatus(fiber.StatusNoContent)
}
