package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
)

// MemStore is the reference storage engine: one map per entity kind plus
// a per-kind id counter, all guarded by a single mutex. Counters only
// move forward, so ids are never reused even after deletion.
type MemStore struct {
	mu sync.Mutex

	users         map[int64]*domain.User
	categories    map[int64]*domain.Category
	listings      map[int64]*domain.Listing
	messages      map[int64]*domain.Message
	conversations map[int64]*domain.Conversation

	userID         int64
	categoryID     int64
	listingID      int64
	messageID      int64
	conversationID int64
	cartItemID     int64
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	s := &MemStore{
		users:         make(map[int64]*domain.User),
		categories:    make(map[int64]*domain.Category),
		listings:      make(map[int64]*domain.Listing),
		messages:      make(map[int64]*domain.Message),
		conversations: make(map[int64]*domain.Conversation),
	}
	for _, c := range defaultCategories {
		s.categoryID++
		s.categories[s.categoryID] = &domain.Category{
			ID:        s.categoryID,
			Name:      c.Name,
			Icon:      c.Icon,
			CreatedAt: time.Now(),
		}
	}
	return s
}

func (s *MemStore) Close() error { return nil }

// ---------- Users ----------

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Cart = append([]domain.CartItem(nil), u.Cart...)
	return &cp
}

func (s *MemStore) GetUser(id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemStore) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByEmailLocked(email)
	if u == nil {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemStore) GetUserByRoll(roll string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByRollLocked(roll)
	if u == nil {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *MemStore) userByEmailLocked(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *MemStore) userByRollLocked(roll string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.RollNumber, roll) {
			return u
		}
	}
	return nil
}

func (s *MemStore) CreateUser(draft domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmailLocked(draft.Email) != nil {
		return nil, domain.Conflictf("email %s already registered", draft.Email)
	}
	if s.userByRollLocked(draft.RollNumber) != nil {
		return nil, domain.Conflictf("roll number %s already registered", draft.RollNumber)
	}
	s.userID++
	u := draft
	u.ID = s.userID
	u.CreatedAt = time.Now()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.Cart = append([]domain.CartItem(nil), draft.Cart...)
	s.users[u.ID] = &u
	return copyUser(&u), nil
}

func (s *MemStore) UpdateUser(id int64, fields UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if fields.Name != nil {
		u.Name = *fields.Name
	}
	if fields.Avatar != nil {
		u.Avatar = *fields.Avatar
	}
	if fields.PasswordHash != nil {
		u.PasswordHash = *fields.PasswordHash
	}
	return copyUser(u), nil
}

// ---------- Categories ----------

func (s *MemStore) Categories() ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetCategory(id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemStore) CreateCategory(name, icon string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryID++
	c := &domain.Category{ID: s.categoryID, Name: name, Icon: icon, CreatedAt: time.Now()}
	s.categories[c.ID] = c
	cp := *c
	return &cp, nil
}

// ---------- Listings ----------

func copyListing(l *domain.Listing) domain.Listing {
	cp := *l
	cp.Images = append([]string(nil), l.Images...)
	return cp
}

func (s *MemStore) CreateListing(draft domain.Listing) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[draft.CategoryID]; !ok {
		return nil, domain.Validationf("unknown category %d", draft.CategoryID)
	}
	s.listingID++
	l := draft
	l.ID = s.listingID
	l.Status = domain.StatusPending
	l.CreatedAt = time.Now()
	l.Images = append([]string(nil), draft.Images...)
	s.listings[l.ID] = &l
	cp := copyListing(&l)
	return &cp, nil
}

func (s *MemStore) GetListing(id int64) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	cp := copyListing(l)
	return &cp, nil
}

func (s *MemStore) listingsWhereLocked(keep func(*domain.Listing) bool) []domain.Listing {
	var out []domain.Listing
	for _, l := range s.listings {
		if keep(l) {
			out = append(out, copyListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *MemStore) Listings() ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listingsWhereLocked(func(*domain.Listing) bool { return true }), nil
}

func (s *MemStore) ListingsByUser(userID int64) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listingsWhereLocked(func(l *domain.Listing) bool { return l.SellerID == userID }), nil
}

func (s *MemStore) ListingsByCategory(categoryID int64) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listingsWhereLocked(func(l *domain.Listing) bool { return l.CategoryID == categoryID }), nil
}

func (s *MemStore) SearchListings(query string) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	terms := tokenize(query)
	return s.listingsWhereLocked(func(l *domain.Listing) bool {
		if len(terms) == 0 {
			return true
		}
		text := strings.ToLower(l.Title) + " " + strings.ToLower(l.Description)
		for _, t := range terms {
			if strings.Contains(text, t) {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemStore) UpdateListing(id int64, fields ListingUpdate) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	if fields.CategoryID != nil {
		if _, ok := s.categories[*fields.CategoryID]; !ok {
			return nil, domain.Validationf("unknown category %d", *fields.CategoryID)
		}
		l.CategoryID = *fields.CategoryID
	}
	if fields.Title != nil {
		l.Title = *fields.Title
	}
	if fields.Description != nil {
		l.Description = *fields.Description
	}
	if fields.Price != nil {
		l.Price = *fields.Price
	}
	if fields.Images != nil {
		l.Images = append([]string(nil), *fields.Images...)
	}
	if fields.UsageTime != nil {
		l.UsageTime = *fields.UsageTime
	}
	if fields.Status != nil {
		l.Status = *fields.Status
	}
	cp := copyListing(l)
	return &cp, nil
}

func (s *MemStore) DeleteListing(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return false, nil
	}
	delete(s.listings, id)
	return true, nil
}

// ---------- Cart ----------

func (s *MemStore) Cart(userID int64) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user %d", userID)
	}
	return append([]domain.CartItem(nil), u.Cart...), nil
}

func (s *MemStore) AddCartItem(userID, listingID int64, qty int) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty < 1 {
		return nil, domain.Validationf("quantity must be at least 1")
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user %d", userID)
	}
	if _, ok := s.listings[listingID]; !ok {
		return nil, domain.NotFoundf("listing %d", listingID)
	}
	// Merge by listing identity rather than appending a duplicate line.
	for i := range u.Cart {
		if u.Cart[i].ListingID == listingID {
			u.Cart[i].Quantity += qty
			return append([]domain.CartItem(nil), u.Cart...), nil
		}
	}
	s.cartItemID++
	u.Cart = append(u.Cart, domain.CartItem{ID: s.cartItemID, ListingID: listingID, Quantity: qty})
	return append([]domain.CartItem(nil), u.Cart...), nil
}

func (s *MemStore) UpdateCartItem(userID, itemID int64, qty int) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty < 1 {
		return nil, domain.Validationf("quantity must be at least 1")
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user %d", userID)
	}
	for i := range u.Cart {
		if u.Cart[i].ID == itemID {
			u.Cart[i].Quantity = qty
			return append([]domain.CartItem(nil), u.Cart...), nil
		}
	}
	return nil, domain.NotFoundf("cart item %d", itemID)
}

func (s *MemStore) RemoveCartItem(userID, itemID int64) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFoundf("user %d", userID)
	}
	// Absent item is a no-op, not an error.
	kept := u.Cart[:0]
	for _, it := range u.Cart {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	u.Cart = kept
	return append([]domain.CartItem(nil), u.Cart...), nil
}

func (s *MemStore) ClearCart(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.NotFoundf("user %d", userID)
	}
	u.Cart = nil
	return nil
}

// ---------- Conversations ----------

func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (s *MemStore) FindOrCreateConversation(userA, userB, listingID int64) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lo, hi := normalizePair(userA, userB)
	for _, c := range s.conversations {
		if c.UserAID == lo && c.UserBID == hi && c.ListingID == listingID {
			cp := *c
			return &cp, nil
		}
	}
	s.conversationID++
	now := time.Now()
	c := &domain.Conversation{
		ID:            s.conversationID,
		UserAID:       lo,
		UserBID:       hi,
		ListingID:     listingID,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	s.conversations[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *MemStore) GetConversation(id int64) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemStore) ConversationsForUser(userID int64) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Conversation
	for _, c := range s.conversations {
		if c.Involves(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) DeleteConversation(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return false, nil
	}
	delete(s.conversations, id)
	for mid, m := range s.messages {
		if m.ConversationID == id {
			delete(s.messages, mid)
		}
	}
	return true, nil
}

// ---------- Messages ----------

func (s *MemStore) AppendMessage(conversationID, senderID, receiverID int64, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if content == "" {
		return nil, domain.Validationf("message content is required")
	}
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, domain.NotFoundf("conversation %d", conversationID)
	}
	s.messageID++
	now := time.Now()
	m := &domain.Message{
		ID:             s.messageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		Read:           false,
		CreatedAt:      now,
	}
	s.messages[m.ID] = m
	c.LastMessageAt = now
	cp := *m
	return &cp, nil
}

func (s *MemStore) MessagesForConversation(conversationID int64) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	// Canonical chat order: oldest first, id as tiebreak.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) MarkConversationRead(conversationID, readerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return false, nil
	}
	changed := false
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.ReceiverID == readerID && !m.Read {
			m.Read = true
			changed = true
		}
	}
	return changed, nil
}

func (s *MemStore) UnreadCount(userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.Read {
			n++
		}
	}
	return n, nil
}
