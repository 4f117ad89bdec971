package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/config"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/http/handlers"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

type testEnv struct {
	app  *fiber.App
	st   store.Store
	auth *services.AuthService
}

// newEnv wires the real handlers onto an in-memory store, with the same
// routes the server registers (minus rate limiting and static files).
func newEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemStore()
	cfg := config.Config{UploadDir: t.TempDir(), EmailDomain: "iitp.ac.in"}
	authSvc := &services.AuthService{Store: st, Secret: "test-secret", Expire: time.Hour, EmailDomain: cfg.EmailDomain}

	app := fiber.New()
	app.Use(handlers.AttachUser(authSvc))
	deps := handlers.NewDeps(st, cfg, authSvc)

	api := app.Group("/api")
	auth := api.Group("/auth")
	auth.Post("/register", deps.AuthHandler.Register)
	auth.Post("/login", deps.AuthHandler.Login)
	auth.Get("/me", handlers.RequireUser(authSvc), deps.AuthHandler.Me)
	auth.Put("/me", handlers.RequireUser(authSvc), deps.AuthHandler.UpdateMe)

	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/:id/listings", deps.CategoryHandler.ListingsInCategory)

	api.Get("/listings", deps.ListingHandler.List)
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

	return &testEnv{app: app, st: st, auth: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

// signup registers a user over HTTP and returns the user and its token.
func (e *testEnv) signup(t *testing.T, name, email, roll string) (*domain.User, string) {
	t.Helper()
	resp := e.do(t, "POST", "/api/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","rollNumber":"`+roll+`","password":"pass123"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	var out struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, resp, &out)
	return &out.User, out.Token
}

// seedAdmin creates an admin directly in the store and mints its token.
func (e *testEnv) seedAdmin(t *testing.T) (*domain.User, string) {
	t.Helper()
	u, err := e.st.CreateUser(domain.User{
		Name: "Admin", Email: "admin@iitp.ac.in", RollNumber: "0000AA00",
		PasswordHash: "x", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatal(err)
	}
	tok, err := e.auth.Token(u)
	if err != nil {
		t.Fatal(err)
	}
	return u, tok
}

func (e *testEnv) approvedListing(t *testing.T, sellerTok, adminTok, title string) domain.Listing {
	t.Helper()
	resp := e.do(t, "POST", "/api/listings", sellerTok,
		`{"title":"`+title+`","description":"good condition","price":500,"categoryId":2,"usageDuration":"6 months"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create listing: status %d", resp.StatusCode)
	}
	var l domain.Listing
	decode(t, resp, &l)

	resp = e.do(t, "PUT", "/api/listings/"+itoa(l.ID), adminTok, `{"status":"approved"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve listing: status %d", resp.StatusCode)
	}
	decode(t, resp, &l)
	return l
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
