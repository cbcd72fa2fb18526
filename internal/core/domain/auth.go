package domain

import "time"

// Permission is a scope string granting access to one category of operation.
// PermFullAccess implies every other permission.
type Permission string

const (
	PermFullAccess        Permission = "full-access"
	PermLeadsRead         Permission = "leads:read"
	PermLeadsWrite        Permission = "leads:write"
	PermClientsRead       Permission = "clients:read"
	PermClientsWrite      Permission = "clients:write"
	PermContractsRead     Permission = "contracts:read"
	PermContractsWrite    Permission = "contracts:write"
	PermProjectsRead      Permission = "projects:read"
	PermProjectsWrite     Permission = "projects:write"
	PermTasksRead         Permission = "tasks:read"
	PermTasksWrite        Permission = "tasks:write"
	PermStoriesRead       Permission = "stories:read"
	PermStoriesWrite      Permission = "stories:write"
	PermMembersRead       Permission = "members:read"
	PermMembersWrite      Permission = "members:write"
	PermTransactionsRead  Permission = "transactions:read"
	PermTransactionsWrite Permission = "transactions:write"
	PermMeetingsRead      Permission = "meetings:read"
	PermMeetingsWrite     Permission = "meetings:write"
	PermSuggestionsRead   Permission = "suggestions:read"
	PermSuggestionsWrite  Permission = "suggestions:write"
)

var permissionCatalog = map[Permission]struct{}{
	PermFullAccess:        {},
	PermLeadsRead:         {},
	PermLeadsWrite:        {},
	PermClientsRead:       {},
	PermClientsWrite:      {},
	PermContractsRead:     {},
	PermContractsWrite:    {},
	PermProjectsRead:      {},
	PermProjectsWrite:     {},
	PermTasksRead:         {},
	PermTasksWrite:        {},
	PermStoriesRead:       {},
	PermStoriesWrite:      {},
	PermMembersRead:       {},
	PermMembersWrite:      {},
	PermTransactionsRead:  {},
	PermTransactionsWrite: {},
	PermMeetingsRead:      {},
	PermMeetingsWrite:     {},
	PermSuggestionsRead:   {},
	PermSuggestionsWrite:  {},
}

func ValidPermission(p Permission) bool {
	_, ok := permissionCatalog[p]
	return ok
}

func ValidatePermissions(perms []Permission) error {
	if len(perms) == 0 {
		return ErrInvalidInput
	}
	for _, p := range perms {
		if !ValidPermission(p) {
			return ErrInvalidInput
		}
	}
	return nil
}

// APIKey is a long-lived bearer credential. Only the SHA-256 hash and a short
// display prefix are persisted; the raw key is surfaced once at creation.
type APIKey struct {
	ID                string
	Name              string
	Prefix            string
	KeyHash           string
	Permissions       []Permission
	InternalProjectID *string
	ExpiresAt         *time.Time
	Active            bool
	LastUsedAt        *time.Time
	CreatedAt         time.Time
}

// Allows reports whether the key's permission set covers required.
// An empty requirement means any authenticated key passes.
func (k APIKey) Allows(required Permission) bool {
	if required == "" {
		return true
	}
	for _, p := range k.Permissions {
		if p == PermFullAccess || p == required {
			return true
		}
	}
	return false
}

// SessionClaims are the identity claims carried by a dashboard session token.
type SessionClaims struct {
	UserID   string
	Email    string
	MemberID string
}

type AuthKind string

const (
	AuthKindJWT    AuthKind = "jwt"
	AuthKindAPIKey AuthKind = "api-key"
)

// AuthResult is the verdict produced by the auth gate. Exactly one variant is
// populated: Session when Kind is AuthKindJWT, Key when Kind is AuthKindAPIKey.
type AuthResult struct {
	Kind    AuthKind
	Session SessionClaims
	Key     *APIKey
}

// HasProjectAccess reports whether the authenticated caller may act on the
// given parent container. Session identities are internal users and have
// access to everything; an unrestricted key has access to everything; a
// project-scoped key only to its own project.
func (r AuthResult) HasProjectAccess(projectID string) bool {
	switch r.Kind {
	case AuthKindJWT:
		return true
	case AuthKindAPIKey:
		if r.Key == nil {
			return false
		}
		if r.Key.InternalProjectID == nil {
			return true
		}
		return *r.Key.InternalProjectID == projectID
	}
	return false
}

// User is a dashboard login identity.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	MemberID     *string
	CreatedAt    time.Time
}
