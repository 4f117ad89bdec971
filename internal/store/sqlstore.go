package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
)

// SQLStore implements the same contract on sqlite. Every public operation
// maps to one statement or one transaction, so the mutation boundary from
// the in-memory engine carries over unchanged. AUTOINCREMENT keys give
// the same monotonic, never-reused identity as the MemStore counters.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

func OpenSQL(dsn string) (*SQLStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// modernc sqlite is single-writer; one conn avoids SQLITE_BUSY races.
	db.SetMaxOpenConns(1)
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedCategories(db); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  roll_number TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  avatar TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','admin')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_roll  ON users(LOWER(roll_number));

CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  icon TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS listings(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  category_id INTEGER NOT NULL REFERENCES categories(id),
  images_json TEXT NOT NULL DEFAULT '[]',
  seller_id INTEGER NOT NULL,
  seller_name TEXT NOT NULL,
  seller_roll TEXT NOT NULL,
  usage_duration TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected','sold')),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category_id);
CREATE INDEX IF NOT EXISTS idx_listings_seller   ON listings(seller_id);

CREATE TABLE IF NOT EXISTS cart_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  listing_id INTEGER NOT NULL REFERENCES listings(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  UNIQUE(user_id, listing_id)
);

CREATE TABLE IF NOT EXISTS conversations(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_a_id INTEGER NOT NULL,
  user_b_id INTEGER NOT NULL,
  listing_id INTEGER NOT NULL,
  last_message_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  UNIQUE(user_a_id, user_b_id, listing_id)
);

CREATE TABLE IF NOT EXISTS messages(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  conversation_id INTEGER NOT NULL REFERENCES conversations(id),
  sender_id INTEGER NOT NULL,
  receiver_id INTEGER NOT NULL,
  content TEXT NOT NULL,
  read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_messages_receiver     ON messages(receiver_id, read);
`
	_, err := db.Exec(schema)
	return err
}

// seedCategories inserts the closed category set if absent (idempotent,
// safe to run every start).
func seedCategories(db *sqlx.DB) error {
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for _, c := range defaultCategories {
		if _, err := tx.Exec(`
			INSERT INTO categories(name, icon, created_at)
			SELECT ?, ?, ?
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE LOWER(name)=LOWER(?))
		`, c.Name, c.Icon, nowStamp(), c.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// stampLayout is RFC 3339 with fixed-width nanoseconds so the stored
// TEXT timestamps sort lexicographically.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nowStamp() string { return time.Now().UTC().Format(stampLayout) }

func parseStamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// ---------- row types ----------

type userRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	RollNumber   string `db:"roll_number"`
	PasswordHash string `db:"password_hash"`
	Avatar       string `db:"avatar"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		RollNumber:   r.RollNumber,
		PasswordHash: r.PasswordHash,
		Avatar:       r.Avatar,
		Role:         r.Role,
		CreatedAt:    parseStamp(r.CreatedAt),
	}
}

type listingRow struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	CategoryID  int64   `db:"category_id"`
	ImagesJSON  string  `db:"images_json"`
	SellerID    int64   `db:"seller_id"`
	SellerName  string  `db:"seller_name"`
	SellerRoll  string  `db:"seller_roll"`
	UsageTime   string  `db:"usage_duration"`
	Status      string  `db:"status"`
	CreatedAt   string  `db:"created_at"`
}

func (r listingRow) toDomain() domain.Listing {
	var images []string
	_ = json.Unmarshal([]byte(r.ImagesJSON), &images)
	return domain.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		Images:      images,
		SellerID:    r.SellerID,
		SellerName:  r.SellerName,
		SellerRoll:  r.SellerRoll,
		UsageTime:   r.UsageTime,
		Status:      r.Status,
		CreatedAt:   parseStamp(r.CreatedAt),
	}
}

type conversationRow struct {
	ID            int64  `db:"id"`
	UserAID       int64  `db:"user_a_id"`
	UserBID       int64  `db:"user_b_id"`
	ListingID     int64  `db:"listing_id"`
	LastMessageAt string `db:"last_message_at"`
	CreatedAt     string `db:"created_at"`
}

func (r conversationRow) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:            r.ID,
		UserAID:       r.UserAID,
		UserBID:       r.UserBID,
		ListingID:     r.ListingID,
		LastMessageAt: parseStamp(r.LastMessageAt),
		CreatedAt:     parseStamp(r.CreatedAt),
	}
}

type messageRow struct {
	ID             int64  `db:"id"`
	ConversationID int64  `db:"conversation_id"`
	SenderID       int64  `db:"sender_id"`
	ReceiverID     int64  `db:"receiver_id"`
	Content        string `db:"content"`
	Read           bool   `db:"read"`
	CreatedAt      string `db:"created_at"`
}

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		ReceiverID:     r.ReceiverID,
		Content:        r.Content,
		Read:           r.Read,
		CreatedAt:      parseStamp(r.CreatedAt),
	}
}

// ---------- Users ----------

const userCols = `id,name,email,roll_number,password_hash,avatar,role,created_at`

func (s *SQLStore) getUserWhere(clause string, args ...any) (*domain.User, error) {
	var r userRow
	err := s.db.Get(&r, `SELECT `+userCols+` FROM users WHERE `+clause, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := r.toDomain()
	cart, err := s.cartOf(u.ID)
	if err != nil {
		return nil, err
	}
	u.Cart = cart
	return u, nil
}

func (s *SQLStore) GetUser(id int64) (*domain.User, error) {
	return s.getUserWhere(`id=?`, id)
}

func (s *SQLStore) GetUserByEmail(email string) (*domain.User, error) {
	return s.getUserWhere(`LOWER(email)=LOWER(?)`, email)
}

func (s *SQLStore) GetUserByRoll(roll string) (*domain.User, error) {
	return s.getUserWhere(`LOWER(roll_number)=LOWER(?)`, roll)
}

func (s *SQLStore) CreateUser(draft domain.User) (*domain.User, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, draft.Email); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.Conflictf("email %s already registered", draft.Email)
	}
	if err := tx.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(roll_number)=LOWER(?)`, draft.RollNumber); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.Conflictf("roll number %s already registered", draft.RollNumber)
	}

	role := draft.Role
	if role == "" {
		role = domain.RoleUser
	}
	res, err := tx.Exec(`
		INSERT INTO users(name,email,roll_number,password_hash,avatar,role,created_at)
		VALUES(?,?,?,?,?,?,?)
	`, draft.Name, draft.Email, draft.RollNumber, draft.PasswordHash, draft.Avatar, role, nowStamp())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetUser(id)
}

func (s *SQLStore) UpdateUser(id int64, fields UserUpdate) (*domain.User, error) {
	set := ``
	args := []any{}
	if fields.Name != nil {
		set += `name=?,`
		args = append(args, *fields.Name)
	}
	if fields.Avatar != nil {
		set += `avatar=?,`
		args = append(args, *fields.Avatar)
	}
	if fields.PasswordHash != nil {
		set += `password_hash=?,`
		args = append(args, *fields.PasswordHash)
	}
	if set != "" {
		args = append(args, id)
		res, err := s.db.Exec(`UPDATE users SET `+set[:len(set)-1]+` WHERE id=?`, args...)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, nil
		}
	}
	return s.GetUser(id)
}

// ---------- Categories ----------

func (s *SQLStore) Categories() ([]domain.Category, error) {
	var rows []struct {
		ID        int64  `db:"id"`
		Name      string `db:"name"`
		Icon      string `db:"icon"`
		CreatedAt string `db:"created_at"`
	}
	if err := s.db.Select(&rows, `SELECT id,name,icon,created_at FROM categories ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Category{ID: r.ID, Name: r.Name, Icon: r.Icon, CreatedAt: parseStamp(r.CreatedAt)})
	}
	return out, nil
}

func (s *SQLStore) GetCategory(id int64) (*domain.Category, error) {
	var r struct {
		ID        int64  `db:"id"`
		Name      string `db:"name"`
		Icon      string `db:"icon"`
		CreatedAt string `db:"created_at"`
	}
	err := s.db.Get(&r, `SELECT id,name,icon,created_at FROM categories WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Category{ID: r.ID, Name: r.Name, Icon: r.Icon, CreatedAt: parseStamp(r.CreatedAt)}, nil
}

func (s *SQLStore) CreateCategory(name, icon string) (*domain.Category, error) {
	res, err := s.db.Exec(`INSERT INTO categories(name,icon,created_at) VALUES(?,?,?)`, name, icon, nowStamp())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCategory(id)
}

// ---------- Listings ----------

const listingCols = `id,title,description,price,category_id,images_json,seller_id,seller_name,seller_roll,usage_duration,status,created_at`

func (s *SQLStore) CreateListing(draft domain.Listing) (*domain.Listing, error) {
	cat, err := s.GetCategory(draft.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.Validationf("unknown category %d", draft.CategoryID)
	}
	images, _ := json.Marshal(draft.Images)
	if draft.Images == nil {
		images = []byte(`[]`)
	}
	res, err := s.db.Exec(`
		INSERT INTO listings(title,description,price,category_id,images_json,seller_id,seller_name,seller_roll,usage_duration,status,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, draft.Title, draft.Description, draft.Price, draft.CategoryID, string(images),
		draft.SellerID, draft.SellerName, draft.SellerRoll, draft.UsageTime, domain.StatusPending, nowStamp())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetListing(id)
}

func (s *SQLStore) GetListing(id int64) (*domain.Listing, error) {
	var r listingRow
	err := s.db.Get(&r, `SELECT `+listingCols+` FROM listings WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l := r.toDomain()
	return &l, nil
}

func (s *SQLStore) selectListings(where string, args ...any) ([]domain.Listing, error) {
	q := `SELECT ` + listingCols + ` FROM listings`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY created_at DESC, id DESC`
	var rows []listingRow
	if err := s.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *SQLStore) Listings() ([]domain.Listing, error) {
	return s.selectListings("")
}

func (s *SQLStore) ListingsByUser(userID int64) ([]domain.Listing, error) {
	return s.selectListings(`seller_id=?`, userID)
}

func (s *SQLStore) ListingsByCategory(categoryID int64) ([]domain.Listing, error) {
	return s.selectListings(`category_id=?`, categoryID)
}

// likeEscape quotes LIKE metacharacters so a token matches as a literal
// substring, same as the in-memory engine.
func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *SQLStore) SearchListings(query string) ([]domain.Listing, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return s.Listings()
	}
	where := ``
	args := []any{}
	for i, t := range terms {
		if i > 0 {
			where += ` OR `
		}
		where += `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
		pat := "%" + likeEscape(t) + "%"
		args = append(args, pat, pat)
	}
	return s.selectListings(where, args...)
}

func (s *SQLStore) UpdateListing(id int64, fields ListingUpdate) (*domain.Listing, error) {
	set := ``
	args := []any{}
	if fields.CategoryID != nil {
		cat, err := s.GetCategory(*fields.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, domain.Validationf("unknown category %d", *fields.CategoryID)
		}
		set += `category_id=?,`
		args = append(args, *fields.CategoryID)
	}
	if fields.Title != nil {
		set += `title=?,`
		args = append(args, *fields.Title)
	}
	if fields.Description != nil {
		set += `description=?,`
		args = append(args, *fields.Description)
	}
	if fields.Price != nil {
		set += `price=?,`
		args = append(args, *fields.Price)
	}
	if fields.Images != nil {
		images, _ := json.Marshal(*fields.Images)
		set += `images_json=?,`
		args = append(args, string(images))
	}
	if fields.UsageTime != nil {
		set += `usage_duration=?,`
		args = append(args, *fields.UsageTime)
	}
	if fields.Status != nil {
		set += `status=?,`
		args = append(args, *fields.Status)
	}
	if set != "" {
		args = append(args, id)
		res, err := s.db.Exec(`UPDATE listings SET `+set[:len(set)-1]+` WHERE id=?`, args...)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, nil
		}
	}
	return s.GetListing(id)
}

func (s *SQLStore) DeleteListing(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM listings WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---------- Cart ----------

func (s *SQLStore) cartOf(userID int64) ([]domain.CartItem, error) {
	var rows []struct {
		ID        int64 `db:"id"`
		ListingID int64 `db:"listing_id"`
		Quantity  int   `db:"quantity"`
	}
	if err := s.db.Select(&rows, `SELECT id,listing_id,quantity FROM cart_items WHERE user_id=? ORDER BY id`, userID); err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.CartItem{ID: r.ID, ListingID: r.ListingID, Quantity: r.Quantity})
	}
	return out, nil
}

func (s *SQLStore) requireUser(userID int64) error {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM users WHERE id=?`, userID); err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("user %d", userID)
	}
	return nil
}

func (s *SQLStore) Cart(userID int64) ([]domain.CartItem, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.cartOf(userID)
}

func (s *SQLStore) AddCartItem(userID, listingID int64, qty int) ([]domain.CartItem, error) {
	if qty < 1 {
		return nil, domain.Validationf("quantity must be at least 1")
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	l, err := s.GetListing(listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFoundf("listing %d", listingID)
	}
	_, err = s.db.Exec(`
		INSERT INTO cart_items(user_id,listing_id,quantity)
		VALUES(?,?,?)
		ON CONFLICT(user_id,listing_id) DO UPDATE
		SET quantity = quantity + excluded.quantity
	`, userID, listingID, qty)
	if err != nil {
		return nil, err
	}
	return s.cartOf(userID)
}

func (s *SQLStore) UpdateCartItem(userID, itemID int64, qty int) ([]domain.CartItem, error) {
	if qty < 1 {
		return nil, domain.Validationf("quantity must be at least 1")
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	res, err := s.db.Exec(`UPDATE cart_items SET quantity=? WHERE id=? AND user_id=?`, qty, itemID, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.NotFoundf("cart item %d", itemID)
	}
	return s.cartOf(userID)
}

func (s *SQLStore) RemoveCartItem(userID, itemID int64) ([]domain.CartItem, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM cart_items WHERE id=? AND user_id=?`, itemID, userID); err != nil {
		return nil, err
	}
	return s.cartOf(userID)
}

func (s *SQLStore) ClearCart(userID int64) error {
	if err := s.requireUser(userID); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE user_id=?`, userID)
	return err
}

// ---------- Conversations ----------

const conversationCols = `id,user_a_id,user_b_id,listing_id,last_message_at,created_at`

func (s *SQLStore) FindOrCreateConversation(userA, userB, listingID int64) (*domain.Conversation, error) {
	lo, hi := normalizePair(userA, userB)
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var r conversationRow
	err = tx.Get(&r, `SELECT `+conversationCols+` FROM conversations WHERE user_a_id=? AND user_b_id=? AND listing_id=?`, lo, hi, listingID)
	if err == nil {
		c := r.toDomain()
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := nowStamp()
	res, err := tx.Exec(`
		INSERT INTO conversations(user_a_id,user_b_id,listing_id,last_message_at,created_at)
		VALUES(?,?,?,?,?)
	`, lo, hi, listingID, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetConversation(id)
}

func (s *SQLStore) GetConversation(id int64) (*domain.Conversation, error) {
	var r conversationRow
	err := s.db.Get(&r, `SELECT `+conversationCols+` FROM conversations WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := r.toDomain()
	return &c, nil
}

func (s *SQLStore) ConversationsForUser(userID int64) ([]domain.Conversation, error) {
	var rows []conversationRow
	err := s.db.Select(&rows, `
		SELECT `+conversationCols+` FROM conversations
		WHERE user_a_id=? OR user_b_id=?
		ORDER BY last_message_at DESC, id DESC
	`, userID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Conversation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *SQLStore) DeleteConversation(id int64) (bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id=?`, id); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM conversations WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

// ---------- Messages ----------

const messageCols = `id,conversation_id,sender_id,receiver_id,content,read,created_at`

func (s *SQLStore) AppendMessage(conversationID, senderID, receiverID int64, content string) (*domain.Message, error) {
	if content == "" {
		return nil, domain.Validationf("message content is required")
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM conversations WHERE id=?`, conversationID); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.NotFoundf("conversation %d", conversationID)
	}

	now := nowStamp()
	res, err := tx.Exec(`
		INSERT INTO messages(conversation_id,sender_id,receiver_id,content,read,created_at)
		VALUES(?,?,?,?,0,?)
	`, conversationID, senderID, receiverID, content, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE conversations SET last_message_at=? WHERE id=?`, now, conversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	var r messageRow
	if err := s.db.Get(&r, `SELECT `+messageCols+` FROM messages WHERE id=?`, id); err != nil {
		return nil, err
	}
	m := r.toDomain()
	return &m, nil
}

func (s *SQLStore) MessagesForConversation(conversationID int64) ([]domain.Message, error) {
	var rows []messageRow
	err := s.db.Select(&rows, `
		SELECT `+messageCols+` FROM messages
		WHERE conversation_id=?
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *SQLStore) MarkConversationRead(conversationID, readerID int64) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE messages SET read=1
		WHERE conversation_id=? AND receiver_id=? AND read=0
	`, conversationID, readerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLStore) UnreadCount(userID int64) (int, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM messages WHERE receiver_id=? AND read=0`, userID)
	return n, err
}
