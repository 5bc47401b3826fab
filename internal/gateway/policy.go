package gateway

import (
	"strings"

	authService "github.com/allisson/authgate/internal/auth/service"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"
)

// RouteRule binds a path pattern to the role and module requirements a
// verified principal must satisfy. Empty Roles means any role; empty Module
// means any module.
type RouteRule struct {
	Pattern string
	Roles   []principalDomain.Role
	Module  principalDomain.Module
}

// Policy is an ordered rule list evaluated first-match-wins. A path that
// matches no rule is permitted: passing verification is enough. Evaluation is
// pure and total, it never errors on strange inputs.
type Policy struct {
	rules []RouteRule
}

// NewPolicy creates a Policy from an ordered rule list.
func NewPolicy(rules []RouteRule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the built-in route requirements: administrative
// paths need the ADMIN role, delete operations need ADMIN or MODERATOR, and
// the medical area needs module membership.
func DefaultPolicy() *Policy {
	return NewPolicy([]RouteRule{
		{Pattern: "/admin/*", Roles: []principalDomain.Role{principalDomain.RoleAdmin}},
		{Pattern: "*/delete", Roles: []principalDomain.Role{principalDomain.RoleAdmin, principalDomain.RoleModerator}},
		{Pattern: "/med/*", Module: principalDomain.ModuleMedical},
	})
}

// Allows reports whether the claims satisfy the first rule matching the path.
func (p *Policy) Allows(path string, claims *authService.Claims) bool {
	for _, rule := range p.rules {
		if !matchPattern(rule.Pattern, path) {
			continue
		}
		return rule.satisfiedBy(claims)
	}
	return true
}

// satisfiedBy checks the claims against the rule's requirements.
func (r *RouteRule) satisfiedBy(claims *authService.Claims) bool {
	if len(r.Roles) > 0 {
		ok := false
		for _, role := range r.Roles {
			if claims.Role == string(role) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if r.Module != "" && claims.Module != string(r.Module) {
		return false
	}

	return true
}

// matchPattern checks if the request path matches the rule pattern.
// Supports four forms:
//  1. Full wildcard: "*" matches any path
//  2. Trailing wildcard: "prefix/*" matches any path starting with "prefix/" (greedy)
//  3. Leading wildcard: "*/suffix" matches any path ending with "/suffix" (greedy)
//  4. Mid-path wildcard: "/v1/*/delete" matches paths with * as single segment
func matchPattern(pattern, requestPath string) bool {
	// Special case: full wildcard matches everything
	if pattern == "*" {
		return true
	}

	// No wildcard: exact match required
	if !strings.Contains(pattern, "*") {
		return pattern == requestPath
	}

	// Trailing wildcard (/*): prefix match (greedy - matches remaining path)
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(requestPath, prefix+"/")
	}

	// Leading wildcard (*/): suffix match (greedy - matches any leading path)
	if strings.HasPrefix(pattern, "*/") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(requestPath, suffix)
	}

	// Mid-path wildcards: segment-by-segment matching
	// Each * matches exactly one segment
	patternParts := strings.Split(pattern, "/")
	requestParts := strings.Split(requestPath, "/")

	// Must have same number of segments for mid-path wildcards
	if len(patternParts) != len(requestParts) {
		return false
	}

	// Compare each segment
	for i := 0; i < len(patternParts); i++ {
		if patternParts[i] == "*" {
			// Wildcard matches any single segment
			continue
		}
		if patternParts[i] != requestParts[i] {
			return false
		}
	}

	return true
}
