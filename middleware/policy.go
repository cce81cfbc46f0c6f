package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/utils"
)

// RoutePolicy binds a method and path prefix to the roles allowed to
// call it. The whole role layer lives in this one table instead of ad
// hoc checks scattered across handlers.
type RoutePolicy struct {
	Method     string // "*" matches any method
	PathPrefix string
	Roles      []string // empty means any authenticated user
}

// Authorize evaluates the policy table once per request. The first
// matching entry wins; a request matching no entry only needs a valid
// token.
func Authorize(table []RoutePolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		policy, ok := match(table, c.Method(), c.Path())
		if !ok || len(policy.Roles) == 0 {
			return c.Next()
		}

		role, _ := c.Locals("role").(string)
		for _, allowed := range policy.Roles {
			if role == allowed {
				return c.Next()
			}
		}
		return utils.Fail(c, utils.ErrAuthorization,
			"You don't have permission to perform this action", "")
	}
}

func match(table []RoutePolicy, method, path string) (RoutePolicy, bool) {
	for _, p := range table {
		if p.Method != "*" && !strings.EqualFold(p.Method, method) {
			continue
		}
		if strings.HasPrefix(path, p.PathPrefix) {
			return p, true
		}
	}
	return RoutePolicy{}, false
}
