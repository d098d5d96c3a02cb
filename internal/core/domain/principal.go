package domain

import "context"

// Principal is the authenticated identity bound to a single request.
// Authorities are resolved once at construction and never change.
type Principal struct {
	User        User
	authorities map[Authority]struct{}
}

// NewPrincipal builds a principal for u with its role-derived authorities.
func NewPrincipal(u User) Principal {
	auths := u.Role.Authorities()
	set := make(map[Authority]struct{}, len(auths))
	for _, a := range auths {
		set[a] = struct{}{}
	}
	return Principal{User: u, authorities: set}
}

// HasAuthority reports whether the principal was granted a.
func (p Principal) HasAuthority(a Authority) bool {
	_, ok := p.authorities[a]
	return ok
}

type principalContextKey struct{}

// ContextWithPrincipal attaches p to ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, &p)
}

// PrincipalFromContext returns the principal installed for the current request, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return Principal{}, false
	}
	return *p, true
}
