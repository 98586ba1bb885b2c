package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultIssuer    = "partydesk"
	defaultAccessTTL = 30 * time.Minute
	// RoleAdmin is the single operator role the console knows about.
	RoleAdmin = "admin"
)

// Claims represents JWT claims used across the service.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies access tokens and manages operator accounts.
// The signing secret is injected so tests can run isolated instances.
type Service struct {
	users     UserStore
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		if v := strings.TrimSpace(issuer); v != "" {
			s.issuer = v
		}
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service with the given store and signing secret.
func NewService(users UserStore, secret string, opts ...ServiceOption) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth secret is not configured")
	}
	svc := &Service{
		users:     users,
		secret:    []byte(secret),
		issuer:    defaultIssuer,
		accessTTL: defaultAccessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// Register creates a new operator account. The email is the login
// identifier and must be unique.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed HS256 access token.
// Every failure collapses into ErrInvalidCredentials so callers cannot
// distinguish an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.generateToken(user)
}

// Authenticate verifies the token signature and claims and loads the user
// it names.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.parseAndValidate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) generateToken(user *User) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (s *Service) parseAndValidate(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != s.issuer {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parseSubject(sub string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(strings.TrimSpace(sub), "%d", &id); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("subject must be positive")
	}
	return id, nil
}
