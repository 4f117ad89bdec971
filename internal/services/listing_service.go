package services

import (
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/validate"
)

// ListingService wraps the listing query engine with the marketplace
// rules: moderation lifecycle, owner/admin authorization, visibility.
type ListingService struct {
	Store store.Store
}

func NewListingService(st store.Store) *ListingService { return &ListingService{Store: st} }

type ListingDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CategoryID  int64    `json:"categoryId"`
	Images      []string `json:"images"`
	UsageTime   string   `json:"usageDuration"`
}

type ListingPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	CategoryID  *int64    `json:"categoryId"`
	Images      *[]string `json:"images"`
	UsageTime   *string   `json:"usageDuration"`
	Status      *string   `json:"status"`
}

// visibleTo implements the visibility policy: everyone sees approved
// listings, only the owner and admins see the rest.
func visibleTo(actor *domain.User, l *domain.Listing) bool {
	if l.Status == domain.StatusApproved {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || actor.ID == l.SellerID
}

func filterVisible(actor *domain.User, in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(in))
	for i := range in {
		if visibleTo(actor, &in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}

// Create validates the draft and stores it. Status is always pending;
// the seller's name and roll are denormalized from the actor for display.
func (s *ListingService) Create(actor *domain.User, d ListingDraft) (*domain.Listing, error) {
	title, ok := validate.Title(d.Title)
	if !ok {
		return nil, domain.Validationf("title is required (max 100 characters)")
	}
	desc, ok := validate.Description(d.Description)
	if !ok {
		return nil, domain.Validationf("description is required (max 1000 characters)")
	}
	if !validate.Price(d.Price) {
		return nil, domain.Validationf("price must be a positive number")
	}
	if d.UsageTime == "" {
		return nil, domain.Validationf("please specify usage duration")
	}
	return s.Store.CreateListing(domain.Listing{
		Title:       title,
		Description: desc,
		Price:       d.Price,
		CategoryID:  d.CategoryID,
		Images:      d.Images,
		SellerID:    actor.ID,
		SellerName:  actor.Name,
		SellerRoll:  actor.RollNumber,
		UsageTime:   d.UsageTime,
	})
}

// Get returns a listing, hiding non-approved ones from strangers the
// same way a missing listing is hidden.
func (s *ListingService) Get(actor *domain.User, id int64) (*domain.Listing, error) {
	l, err := s.Store.GetListing(id)
	if err != nil {
		return nil, err
	}
	if l == nil || !visibleTo(actor, l) {
		return nil, domain.NotFoundf("listing %d", id)
	}
	return l, nil
}

func (s *ListingService) All(actor *domain.User) ([]domain.Listing, error) {
	ls, err := s.Store.Listings()
	if err != nil {
		return nil, err
	}
	return filterVisible(actor, ls), nil
}

func (s *ListingService) Search(actor *domain.User, query string) ([]domain.Listing, error) {
	ls, err := s.Store.SearchListings(query)
	if err != nil {
		return nil, err
	}
	return filterVisible(actor, ls), nil
}

func (s *ListingService) ByCategory(actor *domain.User, categoryID int64) ([]domain.Listing, error) {
	ls, err := s.Store.ListingsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	return filterVisible(actor, ls), nil
}

func (s *ListingService) ByUser(actor *domain.User, userID int64) ([]domain.Listing, error) {
	ls, err := s.Store.ListingsByUser(userID)
	if err != nil {
		return nil, err
	}
	return filterVisible(actor, ls), nil
}

// Update lets the owner or an admin edit content fields at any status.
// Status itself only moves through admin hands, and only along the
// lifecycle (pending -> approved|rejected, approved -> sold).
func (s *ListingService) Update(actor *domain.User, id int64, p ListingPatch) (*domain.Listing, error) {
	l, err := s.Store.GetListing(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFoundf("listing %d", id)
	}
	admin := actor.Role == domain.RoleAdmin
	if !admin && actor.ID != l.SellerID {
		return nil, domain.Forbiddenf("not the owner of listing %d", id)
	}

	patch := store.ListingUpdate{CategoryID: p.CategoryID, Images: p.Images}
	if p.Title != nil {
		title, ok := validate.Title(*p.Title)
		if !ok {
			return nil, domain.Validationf("title is required (max 100 characters)")
		}
		patch.Title = &title
	}
	if p.Description != nil {
		desc, ok := validate.Description(*p.Description)
		if !ok {
			return nil, domain.Validationf("description is required (max 1000 characters)")
		}
		patch.Description = &desc
	}
	if p.Price != nil {
		if !validate.Price(*p.Price) {
			return nil, domain.Validationf("price must be a positive number")
		}
		patch.Price = p.Price
	}
	if p.UsageTime != nil {
		if *p.UsageTime == "" {
			return nil, domain.Validationf("please specify usage duration")
		}
		patch.UsageTime = p.UsageTime
	}
	if p.Status != nil {
		if !admin {
			return nil, domain.Forbiddenf("only admins may change listing status")
		}
		if !domain.ValidStatusTransition(l.Status, *p.Status) {
			return nil, domain.Validationf("cannot move listing from %s to %s", l.Status, *p.Status)
		}
		patch.Status = p.Status
	}
	return s.Store.UpdateListing(id, patch)
}

// Delete removes a listing; owner or admin only.
func (s *ListingService) Delete(actor *domain.User, id int64) error {
	l, err := s.Store.GetListing(id)
	if err != nil {
		return err
	}
	if l == nil {
		return domain.NotFoundf("listing %d", id)
	}
	if actor.Role != domain.RoleAdmin && actor.ID != l.SellerID {
		return domain.Forbiddenf("not the owner of listing %d", id)
	}
	_, err = s.Store.DeleteListing(id)
	return err
}
