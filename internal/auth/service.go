package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dersdefteri/internal/contextutil"
	"dersdefteri/internal/service"
	"dersdefteri/internal/storage"
)

// MinPasswordLength is the minimum number of characters of a password.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned when email and password do not match a user.
	ErrInvalidCredentials = fmt.Errorf("%w: %w", errors.New(service.MsgInvalidCredentials), service.ErrUnauthorized)
	// ErrAlreadyRegistered is returned when the email is taken.
	ErrAlreadyRegistered = fmt.Errorf("%w: %w", errors.New(service.MsgAlreadyRegistered), service.ErrConflict)
)

// Session is a signed-in user with its bearer token.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *storage.User `json:"user"`
}

// Service registers and signs in users.
type Service struct {
	users  storage.UserStore
	tokens *Tokens
	cost   int
}

// NewService creates an auth Service.
func NewService(users storage.UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*storage.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, &service.ValidationError{Field: "email", Message: service.MsgInvalidEmail}
	}
	if password == "" {
		return nil, &service.ValidationError{Field: "password", Message: service.MsgPasswordRequired}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, &service.ValidationError{Field: "password", Message: service.MsgPasswordTooShort}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &storage.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyRegistered, err)
		}
		return nil, service.Classify(service.ErrPersistence, err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "user signed in", "user_id", user.ID)
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Me returns the signed-in user.
func (s *Service) Me(ctx context.Context, userID string) (*storage.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a bearer token and returns its user id.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.UserID(token)
}

// Token issues a token for userID, for calls made on the user's behalf.
func (s *Service) Token(userID string) (string, error) {
	token, _, err := s.tokens.Issue(userID)
	return token, err
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at+1:], ".")
}
