package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Listing lifecycle states. New listings always start Pending; an admin
// moves them to Approved or Rejected, and an approved listing may be
// marked Sold.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusSold     = "sold"
)

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	RollNumber   string     `json:"rollNumber"`
	PasswordHash string     `json:"-"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	Cart         []CartItem `json:"-"`
}

// CartItem lives inside its owning user's cart. ListingID is a strict
// foreign key; joined listing data is produced separately for display.
type CartItem struct {
	ID        int64 `json:"id"`
	ListingID int64 `json:"listingId"`
	Quantity  int   `json:"quantity"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
}

type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CategoryID  int64     `json:"categoryId"`
	Images      []string  `json:"images"`
	SellerID    int64     `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	SellerRoll  string    `json:"sellerRoll"`
	UsageTime   string    `json:"usageDuration"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Conversation participants are stored normalized: UserAID < UserBID.
// At most one conversation exists per (pair, listing).
type Conversation struct {
	ID            int64     `json:"id"`
	UserAID       int64     `json:"userAId"`
	UserBID       int64     `json:"userBId"`
	ListingID     int64     `json:"listingId"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	ReceiverID     int64     `json:"receiverId"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Other returns the participant that is not userID, or 0 if userID is not
// part of the conversation.
func (c Conversation) Other(userID int64) int64 {
	switch userID {
	case c.UserAID:
		return c.UserBID
	case c.UserBID:
		return c.UserAID
	}
	return 0
}

// Involves reports whether userID is one of the two participants.
func (c Conversation) Involves(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// ValidStatusTransition reports whether a listing may move from one
// lifecycle state to another.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusSold
	}
	return false
}
