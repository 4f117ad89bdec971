package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/domain"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/store"
	"github.com/PiyushGhegade/SwapShopCampusMarket/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Store       store.Store
	Secret      string
	Expire      time.Duration
	EmailDomain string
}

type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"rollNumber"`
	Password   string `json:"password"`
}

// Register validates the draft, hashes the password and creates the
// user. Uniqueness of email and roll number is enforced inside the
// store, so no duplicate can slip between check and insert.
func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, domain.Validationf("please add a name")
	}
	email, ok := validate.CampusEmail(in.Email, s.EmailDomain)
	if !ok {
		return nil, domain.Validationf("please use a valid %s email address", s.EmailDomain)
	}
	roll, ok := validate.RollNumber(in.RollNumber)
	if !ok {
		return nil, domain.Validationf("please add a valid roll number")
	}
	if !validate.Password(in.Password) {
		return nil, domain.Validationf("password must be 6-72 chars with letters and digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.Store.CreateUser(domain.User{
		Name:         name,
		Email:        email,
		RollNumber:   roll,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
}

func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Store.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Token signs an HS256 bearer token for the user.
func (s *AuthService) Token(u *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// CurrentUser validates a bearer token and resolves it to the live user
// record. Invalid, expired or orphaned tokens all come back ErrBadCreds.
func (s *AuthService) CurrentUser(token string) (*domain.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrBadCreds
	}
	u, err := s.Store.GetUser(claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrBadCreds
	}
	return u, nil
}

type ProfileUpdate struct {
	Name     *string `json:"name"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// UpdateProfile applies a partial update; a new password is re-hashed
// before it reaches the store.
func (s *AuthService) UpdateProfile(userID int64, in ProfileUpdate) (*domain.User, error) {
	patch := store.UserUpdate{Avatar: in.Avatar}
	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return nil, domain.Validationf("please add a name")
		}
		patch.Name = &name
	}
	if in.Password != nil {
		if !validate.Password(*in.Password) {
			return nil, domain.Validationf("password must be 6-72 chars with letters and digits")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(hash)
		patch.PasswordHash = &h
	}
	u, err := s.Store.UpdateUser(userID, patch)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFoundf("user %d", userID)
	}
	return u, nil
}
