// Package account handles signup, login and bearer token verification.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/venturemind/venturemind-backend/internal/models"
	"github.com/venturemind/venturemind-backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrMissingFields      = errors.New("email and password are required")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

const (
	TokenType       = "bearer"
	defaultUserName = "Founder"
	cacheSize       = 512
)

// bcrypt rejects passwords longer than this.
const maxPasswordBytes = 72

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Notifier interface {
	SendWelcome(ctx context.Context, to, name string) error
}

type Config struct {
	Secret   string
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users  UserStore
	notify Notifier
	secret []byte
	ttl    time.Duration
	cost   int
	cache  *lru.Cache[string, models.User]
	now    func() time.Time
	// dummyHash is compared against when the user does not exist so both
	// login failure paths cost the same.
	dummyHash []byte
}

func NewService(users UserStore, notify Notifier, cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("account: token secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	cache, err := lru.New[string, models.User](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("account: user cache: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("venturemind"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	return &Service{
		users:     users,
		notify:    notify,
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TokenTTL,
		cost:      cfg.BcryptCost,
		cache:     cache,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	DOB      string `json:"dob"`
	Phone    string `json:"phone"`
}

// Signup registers a user and sends the welcome email. A duplicate email
// yields store.ErrDuplicateEmail. Email failures are logged only.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &models.User{
		Email:          email,
		HashedPassword: string(hash),
		FullName:       strings.TrimSpace(req.FullName),
		DOB:            strings.TrimSpace(req.DOB),
		Phone:          strings.TrimSpace(req.Phone),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("user registered", "component", "account", "user_id", u.ID)

	if s.notify != nil {
		if err := s.notify.SendWelcome(ctx, u.Email, u.FullName); err != nil {
			slog.Warn("welcome email failed", "component", "account", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserName    string `json:"user_name"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.issue(u.Email)
	if err != nil {
		return nil, err
	}
	s.cache.Add(u.Email, *u)

	name := u.FullName
	if name == "" {
		name = defaultUserName
	}
	return &Token{AccessToken: signed, TokenType: TokenType, UserName: name}, nil
}

func (s *Service) issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user. Any failure is reported
// as ErrUnauthorized except store errors other than not-found.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	if u, ok := s.cache.Get(claims.Subject); ok {
		return &u, nil
	}
	u, err := s.users.UserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	s.cache.Add(u.Email, *u)
	return u, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
