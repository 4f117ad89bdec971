// Package store owns every marketplace entity and its identity counter.
// All mutation goes through a Store; no caller touches entities directly.
// Each public operation is atomic: MemStore serializes them under one
// lock, SQLStore runs them as single statements or transactions.
package store

import (
	"strings"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
)

// tokenize splits a search query on whitespace, lower-cased. A listing
// matches when any token appears as a substring of title+description.
func tokenize(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

type Store interface {
	// Users
	GetUser(id int64) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByRoll(roll string) (*domain.User, error)
	// CreateUser assigns id and creation time and enforces email/roll
	// uniqueness atomically (domain.ErrConflict on violation).
	CreateUser(draft domain.User) (*domain.User, error)
	UpdateUser(id int64, fields UserUpdate) (*domain.User, error)

	// Categories (static reference data seeded at construction)
	Categories() ([]domain.Category, error)
	GetCategory(id int64) (*domain.Category, error)
	CreateCategory(name, icon string) (*domain.Category, error)

	// Listings
	// CreateListing forces status=pending, stamps creation time and
	// rejects unknown categories (domain.ErrValidation).
	CreateListing(draft domain.Listing) (*domain.Listing, error)
	GetListing(id int64) (*domain.Listing, error)
	Listings() ([]domain.Listing, error)
	ListingsByUser(userID int64) ([]domain.Listing, error)
	ListingsByCategory(categoryID int64) ([]domain.Listing, error)
	// SearchListings tokenizes on whitespace and matches listings whose
	// title+description contains any token as a substring (OR semantics).
	SearchListings(query string) ([]domain.Listing, error)
	UpdateListing(id int64, fields ListingUpdate) (*domain.Listing, error)
	DeleteListing(id int64) (bool, error)

	// Cart (embedded in the user aggregate, merged by listing identity)
	Cart(userID int64) ([]domain.CartItem, error)
	AddCartItem(userID, listingID int64, qty int) ([]domain.CartItem, error)
	UpdateCartItem(userID, itemID int64, qty int) ([]domain.CartItem, error)
	RemoveCartItem(userID, itemID int64) ([]domain.CartItem, error)
	ClearCart(userID int64) error

	// Conversations (canonical pair: participants ordered ascending)
	FindOrCreateConversation(userA, userB, listingID int64) (*domain.Conversation, error)
	GetConversation(id int64) (*domain.Conversation, error)
	ConversationsForUser(userID int64) ([]domain.Conversation, error)
	// DeleteConversation cascades to the conversation's messages.
	DeleteConversation(id int64) (bool, error)

	// Messages
	// AppendMessage stores the message with read=false and bumps the
	// conversation's LastMessageAt to the message's creation time.
	AppendMessage(conversationID, senderID, receiverID int64, content string) (*domain.Message, error)
	MessagesForConversation(conversationID int64) ([]domain.Message, error)
	// MarkConversationRead flips unread messages addressed to readerID in
	// that conversation only; idempotent. Reports whether anything changed.
	MarkConversationRead(conversationID, readerID int64) (bool, error)
	UnreadCount(userID int64) (int, error)

	Close() error
}

// UserUpdate carries the fields a partial user update may touch. Nil
// means "leave unchanged". PasswordHash must already be hashed.
type UserUpdate struct {
	Name         *string
	Avatar       *string
	PasswordHash *string
}

// ListingUpdate carries the fields a partial listing update may touch.
type ListingUpdate struct {
	Title       *string
	Description *string
	Price       *float64
	CategoryID  *int64
	Images      *[]string
	UsageTime   *string
	Status      *string
}

type seedCategory struct {
	Name string
	Icon string
}

// The closed category set. Listing creation rejects anything else.
var defaultCategories = []seedCategory{
	{Name: "Books", Icon: "book-open"},
	{Name: "Electronics", Icon: "computer"},
	{Name: "Furniture", Icon: "sofa"},
	{Name: "Others", Icon: "more-2"},
}
