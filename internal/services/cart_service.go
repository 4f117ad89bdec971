package services

import (
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
)

type CartService struct {
	Store store.Store
}

func NewCartService(st store.Store) *CartService { return &CartService{Store: st} }

// CartLine is a cart item with its listing reference resolved for
// display. Listing is nil when the listing has since been deleted.
type CartLine struct {
	ID       int64           `json:"id"`
	Quantity int             `json:"quantity"`
	Listing  *domain.Listing `json:"listing"`
}

func (s *CartService) join(items []domain.CartItem) ([]CartLine, error) {
	out := make([]CartLine, 0, len(items))
	for _, it := range items {
		l, err := s.Store.GetListing(it.ListingID)
		if err != nil {
			return nil, err
		}
		out = append(out, CartLine{ID: it.ID, Quantity: it.Quantity, Listing: l})
	}
	return out, nil
}

func (s *CartService) View(userID int64) ([]CartLine, error) {
	items, err := s.Store.Cart(userID)
	if err != nil {
		return nil, err
	}
	return s.join(items)
}

// Add merges by listing identity: an existing line's quantity grows by
// qty, otherwise a new line is appended. qty must be >= 1 (the handler
// defaults an omitted quantity to 1 before calling here).
func (s *CartService) Add(userID, listingID int64, qty int) ([]CartLine, error) {
	items, err := s.Store.AddCartItem(userID, listingID, qty)
	if err != nil {
		return nil, err
	}
	return s.join(items)
}

// UpdateQuantity sets an existing line to qty. Values below 1 are
// rejected outright, never clamped and never treated as a remove.
func (s *CartService) UpdateQuantity(userID, itemID int64, qty int) ([]CartLine, error) {
	items, err := s.Store.UpdateCartItem(userID, itemID, qty)
	if err != nil {
		return nil, err
	}
	return s.join(items)
}

// Remove drops a line; removing an absent item is a no-op.
func (s *CartService) Remove(userID, itemID int64) ([]CartLine, error) {
	items, err := s.Store.RemoveCartItem(userID, itemID)
	if err != nil {
		return nil, err
	}
	return s.join(items)
}

func (s *CartService) Clear(userID int64) error {
	return s.Store.ClearCart(userID)
}
