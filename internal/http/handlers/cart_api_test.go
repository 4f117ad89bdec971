package handlers_test

import (
	"net/http"
	"testing"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
)

func TestCartEndpoints(t *testing.T) {
	e := newEnv(t)
	_, sellerTok := e.signup(t, "Ravi", "ravi@iitp.ac.in", "2101CS21")
	_, buyerTok := e.signup(t, "Meera", "meera@iitp.ac.in", "2101CS22")
	_, adminTok := e.seedAdmin(t)
	l := e.approvedListing(t, sellerTok, adminTok, "Casio Calculator")

	// Unauthenticated cart access is refused.
	resp := e.do(t, "GET", "/api/cart/", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous cart: want 401, got %d", resp.StatusCode)
	}

	// Omitted quantity defaults to 1; second add merges.
	resp = e.do(t, "POST", "/api/cart/items", buyerTok, `{"listingId":`+itoa(l.ID)+`}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	resp = e.do(t, "POST", "/api/cart/items", buyerTok, `{"listingId":`+itoa(l.ID)+`,"quantity":2}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("second add: status %d", resp.StatusCode)
	}
	var lines []services.CartLine
	decode(t, resp, &lines)
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("merge failed: %+v", lines)
	}
	if lines[0].Listing == nil || lines[0].Listing.ID != l.ID {
		t.Fatalf("listing not joined: %+v", lines[0])
	}

	// Bad quantities are 400s.
	resp = e.do(t, "POST", "/api/cart/items", buyerTok, `{"listingId":`+itoa(l.ID)+`,"quantity":0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("qty 0: want 400, got %d", resp.StatusCode)
	}
	resp = e.do(t, "PUT", "/api/cart/items/"+itoa(lines[0].ID), buyerTok, `{"quantity":-1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update qty -1: want 400, got %d", resp.StatusCode)
	}
	resp = e.do(t, "PUT", "/api/cart/items/"+itoa(lines[0].ID), buyerTok, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update without quantity: want 400, got %d", resp.StatusCode)
	}

	// Unknown listing is a 404.
	resp = e.do(t, "POST", "/api/cart/items", buyerTok, `{"listingId":9999}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown listing: want 404, got %d", resp.StatusCode)
	}

	// Set quantity, then remove.
	resp = e.do(t, "PUT", "/api/cart/items/"+itoa(lines[0].ID), buyerTok, `{"quantity":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	decode(t, resp, &lines)
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("update failed: %+v", lines)
	}

	// Removing an absent item answers 200 with the cart unchanged.
	resp = e.do(t, "DELETE", "/api/cart/items/9999", buyerTok, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("no-op remove: want 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &lines)
	if len(lines) != 1 {
		t.Fatalf("no-op remove changed cart: %+v", lines)
	}

	resp = e.do(t, "DELETE", "/api/cart/", buyerTok, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: status %d", resp.StatusCode)
	}
	resp = e.do(t, "GET", "/api/cart/", buyerTok, "")
	decode(t, resp, &lines)
	if len(lines) != 0 {
		t.Fatalf("cart not cleared: %+v", lines)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	e := newEnv(t)
	_, sellerTok := e.signup(t, "Ravi", "ravi@iitp.ac.in", "2101CS21")
	_, aTok := e.signup(t, "A", "a@iitp.ac.in", "2101CS31")
	_, bTok := e.signup(t, "B", "b@iitp.ac.in", "2101CS32")
	_, adminTok := e.seedAdmin(t)
	l := e.approvedListing(t, sellerTok, adminTok, "Lamp")

	resp := e.do(t, "POST", "/api/cart/items", aTok, `{"listingId":`+itoa(l.ID)+`}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	resp = e.do(t, "GET", "/api/cart/", bTok, "")
	var lines []services.CartLine
	decode(t, resp, &lines)
	if len(lines) != 0 {
		t.Fatalf("cart leaked across users: %+v", lines)
	}
}
