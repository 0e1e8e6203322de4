package auth

import (
	"fmt"

	"github.com/Domenick1991/flightbook/internal/domain"
)

type Capability int

const (
	CapabilityAuthenticated Capability = iota
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityAdmin:
		return "admin"
	default:
		return "authenticated"
	}
}

// Identity is the caller resolved from a valid token.
type Identity struct {
	UserID string
	Email  string
	Role   domain.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

type Gate struct {
	tokens TokenService
}

func NewGate(tokens TokenService) *Gate {
	return &Gate{tokens: tokens}
}

// Authenticate maps every token failure (absent, malformed, bad signature,
// expired) to domain.ErrUnauthenticated.
func (g *Gate) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, domain.ErrUnauthenticated
	}
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.UserID == "" {
		return Identity{}, domain.ErrUnauthenticated
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (g *Gate) Authorize(id Identity, capability Capability) error {
	if capability == CapabilityAdmin {
		return RequireAdmin(id)
	}
	return nil
}

func RequireAdmin(id Identity) error {
	if !id.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
