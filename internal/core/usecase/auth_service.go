package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgeworks/crmapi/internal/core/domain"
	"github.com/forgeworks/crmapi/internal/core/ports"
)

const (
	// SessionTTL is the validity window of a dashboard session token.
	SessionTTL = 7 * 24 * time.Hour

	keyNamespace = "ck_"
	prefixLen    = len(keyNamespace) + 8
)

// AuthService is the gate every protected request passes through. It resolves
// either an API key (header channel) or a session token (cookie channel) into
// a domain.AuthResult, and owns login, registration and key issuance.
type AuthService struct {
	users     ports.UserRepository
	keys      ports.APIKeyRepository
	jwtSecret []byte
}

// NewAuthService fails when the signing secret is absent so a misconfigured
// process refuses to start instead of issuing unverifiable tokens.
func NewAuthService(users ports.UserRepository, keys ports.APIKeyRepository, jwtSecret string) (*AuthService, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret required")
	}
	return &AuthService{users: users, keys: keys, jwtSecret: []byte(jwtSecret)}, nil
}

// Authorize resolves the request's identity. The API-key channel wins when a
// key is presented; otherwise the session cookie is tried. Every failure,
// including storage errors, collapses to domain.ErrUnauthorized so the caller
// learns nothing about which channel failed or why.
func (s *AuthService) Authorize(ctx context.Context, rawKey, sessionToken string, required domain.Permission) (domain.AuthResult, error) {
	if rawKey != "" {
		return s.authorizeKey(ctx, rawKey, required)
	}
	if sessionToken != "" {
		return s.authorizeSession(sessionToken)
	}
	return domain.AuthResult{}, domain.ErrUnauthorized
}

func (s *AuthService) authorizeKey(ctx context.Context, rawKey string, required domain.Permission) (domain.AuthResult, error) {
	hash := HashKey(rawKey)

	key, err := s.keys.FindByHash(ctx, hash)
	if err != nil {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(key.KeyHash)) != 1 {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}
	if !key.Active {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}
	if !key.Allows(required) {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}

	// Best-effort last-used stamp; a failed write never blocks or fails
	// the request.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.keys.TouchLastUsed(ctx, id); err != nil {
			log.Printf("touch api key %s last used: %v", id, err)
		}
	}(key.ID)

	return domain.AuthResult{Kind: domain.AuthKindAPIKey, Key: &key}, nil
}

func (s *AuthService) authorizeSession(token string) (domain.AuthResult, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.AuthResult{}, domain.ErrUnauthorized
	}

	return domain.AuthResult{
		Kind: domain.AuthKindJWT,
		Session: domain.SessionClaims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			MemberID: claims.MemberID,
		},
	}, nil
}

// Login verifies the password and issues a session token. Unknown email and
// wrong password produce the same verdict.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	if email == "" || password == "" {
		return "", domain.User{}, domain.ErrUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.User{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, domain.ErrUnauthorized
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue session: %w", err)
	}
	return token, user, nil
}

// Register creates a dashboard user. Duplicate emails surface as
// domain.ErrConflict from the repository.
func (s *AuthService) Register(ctx context.Context, email, password, name string, memberID *string) (domain.User, error) {
	if email == "" || name == "" || len(password) < 8 {
		return domain.User{}, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		MemberID:     memberID,
	})
}

// IssueSession signs the user's identity claims with a fixed validity window.
func (s *AuthService) IssueSession(user domain.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			Issuer:    "crmapi",
		},
	}
	if user.MemberID != nil {
		claims.MemberID = *user.MemberID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// CreateAPIKey issues a new key. The raw key is returned exactly once; only
// its hash and display prefix are persisted.
func (s *AuthService) CreateAPIKey(ctx context.Context, name string, perms []domain.Permission, internalProjectID *string, expiresAt *time.Time) (domain.APIKey, string, error) {
	if name == "" {
		return domain.APIKey{}, "", domain.ErrInvalidInput
	}
	if err := domain.ValidatePermissions(perms); err != nil {
		return domain.APIKey{}, "", err
	}

	raw, err := generateKeyMaterial()
	if err != nil {
		return domain.APIKey{}, "", fmt.Errorf("generate key material: %w", err)
	}

	key, err := s.keys.Create(ctx, domain.APIKey{
		Name:              name,
		Prefix:            raw[:prefixLen],
		KeyHash:           HashKey(raw),
		Permissions:       perms,
		InternalProjectID: internalProjectID,
		ExpiresAt:         expiresAt,
		Active:            true,
	})
	if err != nil {
		return domain.APIKey{}, "", err
	}
	return key, raw, nil
}

func (s *AuthService) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	return s.keys.List(ctx)
}

// APIKeyUpdate carries the mutable key attributes; nil fields are left as-is.
type APIKeyUpdate struct {
	Name              *string
	Permissions       []domain.Permission
	InternalProjectID *string
	ClearProjectScope bool
	ExpiresAt         *time.Time
	ClearExpiry       bool
	Active            *bool
}

func (s *AuthService) UpdateAPIKey(ctx context.Context, id string, upd APIKeyUpdate) (domain.APIKey, error) {
	key, err := s.keys.FindByID(ctx, id)
	if err != nil {
		return domain.APIKey{}, err
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return domain.APIKey{}, domain.ErrInvalidInput
		}
		key.Name = *upd.Name
	}
	if upd.Permissions != nil {
		if err := domain.ValidatePermissions(upd.Permissions); err != nil {
			return domain.APIKey{}, err
		}
		key.Permissions = upd.Permissions
	}
	if upd.ClearProjectScope {
		key.InternalProjectID = nil
	} else if upd.InternalProjectID != nil {
		key.InternalProjectID = upd.InternalProjectID
	}
	if upd.ClearExpiry {
		key.ExpiresAt = nil
	} else if upd.ExpiresAt != nil {
		key.ExpiresAt = upd.ExpiresAt
	}
	if upd.Active != nil {
		key.Active = *upd.Active
	}

	return s.keys.Update(ctx, key)
}

func (s *AuthService) DeleteAPIKey(ctx context.Context, id string) (bool, error) {
	return s.keys.Delete(ctx, id)
}

// HashKey returns the hex-encoded SHA-256 digest of a raw key, the only form
// ever persisted.
func HashKey(rawKey string) string {
	digest := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(digest[:])
}

func generateKeyMaterial() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return keyNamespace + hex.EncodeToString(b), nil
}

type sessionClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	MemberID string `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}
