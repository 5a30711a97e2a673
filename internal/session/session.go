// Package session resolves the caller identity for a request.
//
// The app runs behind a gateway that authenticates the user and forwards the
// identity in headers, so the provider here only has to read and normalize
// it. Keeping the resolution behind the Provider interface lets the router
// swap in a different source (token introspection, mTLS subject) without
// touching handlers.
package session

import (
	"net/http"
	"strings"
)

const (
	// HeaderUserID carries the authenticated user identifier.
	HeaderUserID = "X-User-ID"
	// HeaderRoles carries a comma-separated role list.
	HeaderRoles = "X-User-Roles"

	// RoleCaretaker unlocks the read-only caretaker views over another
	// person's adherence data.
	RoleCaretaker = "caretaker"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the identity carries role (case-insensitive).
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Provider resolves the identity behind an HTTP request.
type Provider interface {
	Identity(r *http.Request) Identity
}

// HeaderProvider reads the identity from trusted gateway headers. When the
// user header is absent it falls back to DefaultUser, which keeps local
// development working without a gateway in front.
type HeaderProvider struct {
	DefaultUser string
}

// Identity implements Provider.
func (p HeaderProvider) Identity(r *http.Request) Identity {
	id := Identity{UserID: p.DefaultUser}
	if r == nil {
		return id
	}
	if v := strings.TrimSpace(r.Header.Get(HeaderUserID)); v != "" {
		id.UserID = v
	}
	if v := strings.TrimSpace(r.Header.Get(HeaderRoles)); v != "" {
		for _, part := range strings.Split(v, ",") {
			if role := strings.TrimSpace(part); role != "" {
				id.Roles = append(id.Roles, role)
			}
		}
	}
	return id
}
