package security

import (
	"panchayat/internal/apperr"
	"panchayat/internal/models"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "unauthenticated", "invalid or expired token")
	ErrForbidden       = apperr.New(apperr.KindForbidden, "forbidden", "you are not allowed to perform this action")
)

// RoleSet is the exact set of roles allowed to perform an operation. Roles are not
// ordered: admin is allowed only where it is listed.
type RoleSet map[models.UserRole]struct{}

func Roles(roles ...models.UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(role models.UserRole) bool {
	_, ok := s[role]
	return ok
}

type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Guard authenticates bearer tokens and authorizes identities against role sets.
type Guard struct {
	verifier TokenVerifier
}

func NewGuard(verifier TokenVerifier) *Guard {
	return &Guard{verifier: verifier}
}

// Authenticate verifies rawToken. Every verification failure yields ErrUnauthenticated
// wrapping the specific cause, so callers cannot tell an expired token from a forged one.
func (g *Guard) Authenticate(rawToken string) (Identity, error) {
	if rawToken == "" {
		return Identity{}, ErrUnauthenticated
	}
	identity, err := g.verifier.Verify(rawToken)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConfiguration {
			return Identity{}, err
		}
		return Identity{}, apperr.Wrap(ErrUnauthenticated, err)
	}
	return identity, nil
}

func (g *Guard) Authorize(identity Identity, allowed RoleSet) error {
	return Authorize(identity, allowed)
}

func Authorize(identity Identity, allowed RoleSet) error {
	if !allowed.Contains(identity.Role) {
		return ErrForbidden
	}
	return nil
}
