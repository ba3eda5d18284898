package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/maallem/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by Register when the two password fields
// differ.
var ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)

const (
	minPasswordLength = 6
	tokenTTL          = 24 * time.Hour
)

// EventPublisher receives session-change notifications.
type EventPublisher interface {
	Publish(evt domain.SessionEvent)
}

// Registration holds the sign-up form values.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            domain.Role
	City            string
	Phone           string
}

// AuthService is the identity provider: sign-up, sign-in, sign-out and
// current-session lookup over signed JWTs.
type AuthService struct {
	users      domain.UserRepository
	events     EventPublisher
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(users domain.UserRepository, events EventPublisher, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		events:     events,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Register validates the form and creates the account and its profile.
// Validation failures return before the store is touched.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	if err := validateRegistration(&reg); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         reg.Name,
		Email:        reg.Email,
		Role:         reg.Role,
		City:         reg.City,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(domain.SessionSignedUp, user.ID, user.Role)
	return user, nil
}

func validateRegistration(reg *Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.Phone = strings.TrimSpace(reg.Phone)

	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}
	if reg.Password != reg.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(reg.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	if !reg.Role.Valid() {
		return fmt.Errorf("%w: role must be client or provider", domain.ErrInvalidInput)
	}
	if !domain.IsKnownCity(reg.City) {
		return fmt.Errorf("%w: unknown city %q", domain.ErrInvalidInput, reg.City)
	}
	return nil
}

// Login verifies credentials and returns a signed JWT token string.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}

	s.publish(domain.SessionSignedIn, user.ID, user.Role)
	return token, nil
}

// Logout announces the end of the session carried by token. Tokens are
// stateless, so the caller is responsible for discarding the cookie.
func (s *AuthService) Logout(token string) {
	userID, role, err := s.parseToken(token)
	if err != nil {
		s.publish(domain.SessionSignedOut, "", "")
		return
	}
	s.publish(domain.SessionSignedOut, userID, role)
}

// ValidateToken parses and validates a JWT token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	userID, _, err := s.parseToken(tokenString)
	return userID, err
}

// CurrentUser resolves the session carried by token to its profile.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) parseToken(tokenString string) (string, domain.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", domain.ErrUnauthorized
	}

	role, _ := claims["role"].(string)
	return sub, domain.Role(role), nil
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"name": user.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) publish(kind domain.SessionEventKind, userID string, role domain.Role) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.SessionEvent{Kind: kind, UserID: userID, Role: role, At: time.Now().UTC()})
}
