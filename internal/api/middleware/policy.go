package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/breno/product-api/internal/api/metrics"
	"github.com/breno/product-api/internal/core/domain"
)

// Requirement is what a route demands of the caller.
type Requirement int

const (
	Authenticated Requirement = iota
	Public
	RequireAdmin
)

// anyMethod matches every HTTP method in a rule.
const anyMethod = "*"

type rule struct {
	method string
	path   string // echo route template; a trailing "*" matches any suffix
	need   Requirement
}

// Policy is an immutable rule table evaluated per request. Unmatched routes
// require authentication.
type Policy struct {
	rules []rule
}

// NewPolicy builds the route table. publicRead opens GET /products and
// GET /products/:id to anonymous callers.
func NewPolicy(publicRead bool) *Policy {
	read := Authenticated
	if publicRead {
		read = Public
	}
	return &Policy{rules: []rule{
		{method: echo.POST, path: "/auth/login", need: Public},
		{method: echo.POST, path: "/auth/register", need: Public},
		{method: echo.GET, path: "/products", need: read},
		{method: echo.GET, path: "/products/:id", need: read},
		{method: echo.POST, path: "/products", need: RequireAdmin},
		{method: echo.PUT, path: "/products/:id", need: RequireAdmin},
		{method: echo.DELETE, path: "/products/:id", need: RequireAdmin},
		{method: anyMethod, path: "/swagger/*", need: Public},
		{method: anyMethod, path: "/health", need: Public},
		{method: anyMethod, path: "/health/ready", need: Public},
		{method: anyMethod, path: "/metrics", need: Public},
	}}
}

// Requirement returns the requirement for method on the route template path.
// An exact method beats the wildcard, and a literal path beats a prefix rule.
func (p *Policy) Requirement(method, path string) Requirement {
	best, bestScore := Authenticated, -1
	for _, r := range p.rules {
		score, ok := r.match(method, path)
		if ok && score > bestScore {
			best, bestScore = r.need, score
		}
	}
	return best
}

func (r rule) match(method, path string) (int, bool) {
	score := 0
	switch r.method {
	case method:
		score++
	case anyMethod:
	default:
		return 0, false
	}

	if prefix, ok := strings.CutSuffix(r.path, "*"); ok {
		if !strings.HasPrefix(path, prefix) {
			return 0, false
		}
		return score, true
	}
	if r.path != path {
		return 0, false
	}
	return score + 2, true
}

// Authorize enforces the policy against the principal installed by
// Authenticate. It must run after Authenticate.
func Authorize(p *Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			need := p.Requirement(c.Request().Method, c.Path())
			if need == Public {
				return next(c)
			}

			principal, ok := domain.PrincipalFromContext(c.Request().Context())
			if !ok {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}
			if need == RequireAdmin && !principal.HasAuthority(domain.AuthorityAdmin) {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrAccessDenied
			}

			metrics.AuthorizationDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
