package action

import (
	"strings"

	"github.com/piresc/arbiter/internal/pkg/models"
)

// Permission is a named predicate over the caller's claims
type Permission struct {
	name   string
	allows func(c *models.Claims) bool
}

// Allows reports whether c satisfies the permission
func (p Permission) Allows(c *models.Claims) bool {
	return p.allows(c)
}

func (p Permission) String() string {
	return p.name
}

var (
	// Anyone admits every caller, verified or not
	Anyone = Permission{name: "anyone", allows: func(*models.Claims) bool { return true }}

	// Authenticated admits any verified caller
	Authenticated = Permission{name: "authenticated", allows: func(c *models.Claims) bool { return c != nil }}

	// AdminOnly admits callers with the admin flag
	AdminOnly = Permission{name: "admin", allows: func(c *models.Claims) bool { return c != nil && c.IsAdmin }}
)

// HasRole admits callers holding role. Admins hold every role.
func HasRole(role string) Permission {
	return Permission{
		name: "role:" + role,
		allows: func(c *models.Claims) bool {
			return c != nil && (c.IsAdmin || c.HasRole(role))
		},
	}
}

// AnyOf admits callers satisfying at least one of ps
func AnyOf(ps ...Permission) Permission {
	return Permission{
		name: "any(" + joinNames(ps) + ")",
		allows: func(c *models.Claims) bool {
			for _, p := range ps {
				if p.Allows(c) {
					return true
				}
			}
			return false
		},
	}
}

// AllOf admits callers satisfying every one of ps
func AllOf(ps ...Permission) Permission {
	return Permission{
		name: "all(" + joinNames(ps) + ")",
		allows: func(c *models.Claims) bool {
			for _, p := range ps {
				if !p.Allows(c) {
					return false
				}
			}
			return true
		},
	}
}

func joinNames(ps []Permission) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	return strings.Join(names, ",")
}

// EntityVisible reports whether the caller may see e. Entities without roles
// are public; otherwise the caller needs one of them, or admin.
func EntityVisible(c *models.Claims, e models.Entity) bool {
	if c == nil {
		return false
	}
	if c.IsAdmin || len(e.Roles) == 0 {
		return true
	}
	for _, role := range e.Roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}
