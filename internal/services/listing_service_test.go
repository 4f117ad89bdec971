package services_test

import (
	"errors"
	"testing"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/services"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

func seedUser(t *testing.T, st store.Store, name, email, roll, role string) *domain.User {
	t.Helper()
	u, err := st.CreateUser(domain.User{
		Name: name, Email: email, RollNumber: roll, PasswordHash: "x", Role: role,
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func draft(title string) services.ListingDraft {
	return services.ListingDraft{
		Title:       title,
		Description: "barely used",
		Price:       500,
		CategoryID:  2,
		UsageTime:   "3 months",
	}
}

func TestListingCreateValidation(t *testing.T) {
	st := store.NewMemStore()
	svc := services.NewListingService(st)
	seller := seedUser(t, st, "S", "s@iitp.ac.in", "2101CS01", domain.RoleUser)

	cases := []struct {
		name string
		d    services.ListingDraft
	}{
		{"empty title", services.ListingDraft{Description: "d", Price: 1, CategoryID: 1, UsageTime: "1 month"}},
		{"empty description", services.ListingDraft{Title: "t", Price: 1, CategoryID: 1, UsageTime: "1 month"}},
		{"negative price", services.ListingDraft{Title: "t", Description: "d", Price: -1, CategoryID: 1, UsageTime: "1 month"}},
		{"missing usage", services.ListingDraft{Title: "t", Description: "d", Price: 1, CategoryID: 1}},
		{"unknown category", services.ListingDraft{Title: "t", Description: "d", Price: 1, CategoryID: 42, UsageTime: "1 month"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(seller, tc.d); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestListingVisibility(t *testing.T) {
	st := store.NewMemStore()
	svc := services.NewListingService(st)
	seller := seedUser(t, st, "S", "s@iitp.ac.in", "2101CS01", domain.RoleUser)
	stranger := seedUser(t, st, "T", "t@iitp.ac.in", "2101CS02", domain.RoleUser)
	admin := seedUser(t, st, "Admin", "admin@iitp.ac.in", "0000AA00", domain.RoleAdmin)

	l, err := svc.Create(seller, draft("Casio Calculator"))
	if err != nil {
		t.Fatal(err)
	}

	// Pending: hidden from strangers and the anonymous feed, visible to
	// the owner and admins.
	if _, err := svc.Get(stranger, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("stranger sees pending listing: %v", err)
	}
	if _, err := svc.Get(nil, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("anonymous sees pending listing: %v", err)
	}
	if _, err := svc.Get(seller, l.ID); err != nil {
		t.Fatalf("owner cannot see own pending listing: %v", err)
	}
	if _, err := svc.Get(admin, l.ID); err != nil {
		t.Fatalf("admin cannot see pending listing: %v", err)
	}
	if ls, _ := svc.All(nil); len(ls) != 0 {
		t.Fatalf("anonymous feed leaks pending listings: %+v", ls)
	}
	if ls, _ := svc.Search(stranger, "calculator"); len(ls) != 0 {
		t.Fatalf("search leaks pending listings: %+v", ls)
	}

	// Approve, then everyone sees it.
	approved := domain.StatusApproved
	if _, err := svc.Update(admin, l.ID, services.ListingPatch{Status: &approved}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(nil, l.ID); err != nil {
		t.Fatalf("anonymous cannot see approved listing: %v", err)
	}
	if ls, _ := svc.Search(stranger, "calculator"); len(ls) != 1 {
		t.Fatalf("search misses approved listing: %+v", ls)
	}
}

func TestListingStatusAuthz(t *testing.T) {
	st := store.NewMemStore()
	svc := services.NewListingService(st)
	seller := seedUser(t, st, "S", "s@iitp.ac.in", "2101CS01", domain.RoleUser)
	admin := seedUser(t, st, "Admin", "admin@iitp.ac.in", "0000AA00", domain.RoleAdmin)

	l, err := svc.Create(seller, draft("Lamp"))
	if err != nil {
		t.Fatal(err)
	}

	approved := domain.StatusApproved
	if _, err := svc.Update(seller, l.ID, services.ListingPatch{Status: &approved}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner changed status: want forbidden, got %v", err)
	}

	// Lifecycle: pending -> sold is not a legal move.
	sold := domain.StatusSold
	if _, err := svc.Update(admin, l.ID, services.ListingPatch{Status: &sold}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("pending->sold: want validation error, got %v", err)
	}
	if _, err := svc.Update(admin, l.ID, services.ListingPatch{Status: &approved}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Update(admin, l.ID, services.ListingPatch{Status: &sold})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusSold {
		t.Fatalf("want sold, got %s", got.Status)
	}
	// Sold is terminal.
	pending := domain.StatusPending
	if _, err := svc.Update(admin, l.ID, services.ListingPatch{Status: &pending}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("sold->pending: want validation error, got %v", err)
	}
}

func TestListingEditAndDeleteAuthz(t *testing.T) {
	st := store.NewMemStore()
	svc := services.NewListingService(st)
	seller := seedUser(t, st, "S", "s@iitp.ac.in", "2101CS01", domain.RoleUser)
	stranger := seedUser(t, st, "T", "t@iitp.ac.in", "2101CS02", domain.RoleUser)
	admin := seedUser(t, st, "Admin", "admin@iitp.ac.in", "0000AA00", domain.RoleAdmin)

	l, err := svc.Create(seller, draft("Mattress"))
	if err != nil {
		t.Fatal(err)
	}

	price := 350.0
	if _, err := svc.Update(stranger, l.ID, services.ListingPatch{Price: &price}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger edit: want forbidden, got %v", err)
	}
	if err := svc.Delete(stranger, l.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete: want forbidden, got %v", err)
	}

	got, err := svc.Update(seller, l.ID, services.ListingPatch{Price: &price})
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 350 {
		t.Fatalf("owner edit did not apply: %+v", got)
	}
	if err := svc.Delete(admin, l.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(admin, l.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double delete: want not-found, got %v", err)
	}
}
