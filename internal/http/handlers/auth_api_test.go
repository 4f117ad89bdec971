package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
)

func TestRegisterLoginAndMe(t *testing.T) {
	e := newEnv(t)

	u, tok := e.signup(t, "Asha", "asha@iitp.ac.in", "2101CS11")
	if u.ID == 0 || tok == "" {
		t.Fatalf("register response incomplete: %+v token=%q", u, tok)
	}

	// Password must never appear in responses.
	resp := e.do(t, "GET", "/api/auth/me", tok, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d", resp.StatusCode)
	}
	var raw map[string]any
	decode(t, resp, &raw)
	if _, leaked := raw["passwordHash"]; leaked {
		t.Fatal("password hash leaked in /me")
	}
	if raw["email"] != "asha@iitp.ac.in" {
		t.Fatalf("me returned wrong user: %+v", raw)
	}

	// Login over HTTP.
	resp = e.do(t, "POST", "/api/auth/login", "", `{"email":"asha@iitp.ac.in","password":"pass123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	resp = e.do(t, "POST", "/api/auth/login", "", `{"email":"asha@iitp.ac.in","password":"wrongpass1"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: want 401, got %d", resp.StatusCode)
	}
}

func TestRegisterRejectsOffCampusAndDuplicates(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, "POST", "/api/auth/register", "",
		`{"name":"X","email":"x@gmail.com","rollNumber":"2101CS01","password":"pass123"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("off-campus email: want 400, got %d", resp.StatusCode)
	}

	e.signup(t, "Asha", "asha@iitp.ac.in", "2101CS11")
	resp = e.do(t, "POST", "/api/auth/register", "",
		`{"name":"Other","email":"ASHA@iitp.ac.in","rollNumber":"2101CS12","password":"pass123"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate email: want 409, got %d", resp.StatusCode)
	}
}

func TestMeRequiresToken(t *testing.T) {
	e := newEnv(t)
	resp := e.do(t, "GET", "/api/auth/me", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", resp.StatusCode)
	}
	resp = e.do(t, "GET", "/api/auth/me", "garbage-token", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: want 401, got %d", resp.StatusCode)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	_, tok := e.signup(t, "Asha", "asha@iitp.ac.in", "2101CS11")

	resp := e.do(t, "PUT", "/api/auth/me", tok, `{"name":"Asha K","avatar":"/uploads/a.png"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update profile: status %d", resp.StatusCode)
	}
	var u domain.User
	decode(t, resp, &u)
	if u.Name != "Asha K" || u.Avatar != "/uploads/a.png" {
		t.Fatalf("profile not updated: %+v", u)
	}

	resp = e.do(t, "PUT", "/api/auth/me", tok, `{"password":"short"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: want 400, got %d", resp.StatusCode)
	}
}

// Login throttling with the same per-route limiter the server mounts.
func TestLoginThrottle(t *testing.T) {
	app := fiber.New()
	app.Post("/login", limiter.New(limiter.Config{Max: 2, Expiration: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusUnauthorized)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: want 401, got %d", i+1, resp.StatusCode)
		}
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("third attempt: want 429, got %d", resp.StatusCode)
	}
}
