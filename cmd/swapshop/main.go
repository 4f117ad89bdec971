package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/config"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/http/handlers"
	applog "github.com/PiyushGhegade/SwapShopCampusMarket/internal/log"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	// Storage engine: in-memory by default, sqlite when DB_DSN is set.
	var st store.Store
	if cfg.DBDSN == "" {
		log.Printf("[store] using in-memory storage")
		st = store.NewMemStore()
	} else {
		sqlSt, err := store.OpenSQL(cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("[store] using sqlite storage at %s", cfg.DBDSN)
		st = sqlSt
	}
	defer func() { _ = st.Close() }()

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatal(err)
	}

	authSvc := &services.AuthService{
		Store:       st,
		Secret:      cfg.JWTSecret,
		Expire:      cfg.JWTExpire,
		EmailDomain: cfg.EmailDomain,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard (images arrive via multipart)
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5173",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/uploads/")
		},
	}))
	app.Use(handlers.AttachUser(authSvc))

	// ---------- Uploaded media ----------
	uploadDir := cfg.UploadDir
	if !filepath.IsAbs(uploadDir) {
		if abs, err := filepath.Abs(uploadDir); err == nil {
			uploadDir = abs
		}
	}
	log.Printf("[static] /uploads -> %s", uploadDir)
	// Guarded to avoid traversal
	app.Get("/uploads/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(uploadDir, clean), true)
	})

	// ---------- API routes ----------
	deps := handlers.NewDeps(st, cfg, authSvc)
	api := app.Group("/api")

	auth := api.Group("/auth")
	authLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many attempts, try again later"})
		},
	})
	auth.Post("/register", authLimiter, deps.AuthHandler.Register)
	auth.Post("/login", authLimiter, deps.AuthHandler.Login)
	auth.Get("/me", handlers.RequireUser(authSvc), deps.AuthHandler.Me)
	auth.Put("/me", handlers.RequireUser(authSvc), deps.AuthHandler.UpdateMe)

	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/:id/listings", deps.CategoryHandler.ListingsInCategory)

	searchLimiter := limiter.New(limiter.Config{Max: 30, Expiration: time.Minute})
	api.Get("/listings", searchLimiter, deps.ListingHandler.List)
	api.Get("/listings/:id", deps.ListingHandler.Detail)
	api.Post("/listings", handlers.RequireUser(authSvc), deps.ListingHandler.Create)
	api.Put("/listings/:id", handlers.RequireUser(authSvc), deps.ListingHandler.Update)
	api.Delete("/listings/:id", handlers.RequireUser(authSvc), deps.ListingHandler.Delete)

	cart := api.Group("/cart", handlers.RequireUser(authSvc))
	cart.Get("/", deps.CartHandler.View)
	cart.Post("/items", deps.CartHandler.Add)
	cart.Put("/items/:itemId", deps.CartHandler.UpdateItem)
	cart.Delete("/items/:itemId", deps.CartHandler.RemoveItem)
	cart.Delete("/", deps.CartHandler.Clear)

	msgs := api.Group("/messages", handlers.RequireUser(authSvc))
	msgs.Get("/conversations", deps.MessageHandler.Conversations)
	msgs.Get("/conversations/:id", deps.MessageHandler.Thread)
	msgs.Post("/", deps.MessageHandler.Send)
	msgs.Post("/conversations/:id/read", deps.MessageHandler.MarkRead)
	msgs.Get("/unread-count", deps.MessageHandler.UnreadCount)
	msgs.Delete("/conversations/:id", deps.MessageHandler.DeleteConversation)

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
