package gateway

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/httputil"
	"github.com/allisson/authgate/internal/metrics"

	apperrors "github.com/allisson/authgate/internal/errors"
	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// ErrMissingCredential indicates the request carried no usable Bearer header.
var ErrMissingCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "missing bearer credential")

// TokenVerifier is the local verification dependency of the filter:
// signature and expiry checks only.
type TokenVerifier interface {
	Verify(token string) (*authService.Claims, error)
}

// AuthFilter is the gateway's authentication middleware. For every request it
// runs the fixed pipeline: preflight/open-route bypass, Bearer extraction,
// local verification, remote revocation check, policy evaluation and header
// injection. Any failure short-circuits with 401 or 403 and the request never
// reaches the upstream.
type AuthFilter struct {
	verifier   TokenVerifier
	revocation RevocationChecker
	policy     *Policy
	openRoutes []string
	logger     *slog.Logger
	metrics    metrics.BusinessMetrics
}

// NewAuthFilter creates an AuthFilter. openRoutes are path prefixes that
// bypass authentication entirely.
func NewAuthFilter(
	verifier TokenVerifier,
	revocation RevocationChecker,
	policy *Policy,
	openRoutes []string,
	logger *slog.Logger,
) *AuthFilter {
	return &AuthFilter{
		verifier:   verifier,
		revocation: revocation,
		policy:     policy,
		openRoutes: openRoutes,
		logger:     logger,
		metrics:    metrics.NewNoOpBusinessMetrics(),
	}
}

// WithMetrics enables filter decision counters and returns the filter for
// chaining.
func (f *AuthFilter) WithMetrics(m metrics.BusinessMetrics) *AuthFilter {
	f.metrics = m
	return f
}

// Middleware returns the gin handler implementing the filter pipeline.
func (f *AuthFilter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight never authenticates
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if f.isOpenRoute(path) {
			c.Next()
			return
		}

		token, ok := extractBearer(c.GetHeader("Authorization"))
		if !ok {
			f.reject(c, ErrMissingCredential, "missing_credential")
			return
		}

		claims, err := f.verifier.Verify(token)
		if err != nil {
			f.reject(c, err, "invalid_token")
			return
		}

		// Remote check with its own deadline. Timeout, transport error or a
		// false answer all read as revoked; the check is never retried here.
		active, err := f.revocation.IsActive(c.Request.Context(), token)
		if err != nil || !active {
			if err != nil {
				f.logger.Warn("revocation check failed, denying",
					slog.String("path", path),
					slog.Any("error", err),
				)
			}
			f.reject(c, authDomain.ErrRevokedToken, "revoked_token")
			return
		}

		if !f.policy.Allows(path, claims) {
			f.reject(c, authDomain.ErrAuthorizationDenied, "forbidden")
			return
		}

		f.injectIdentity(c, claims)
		f.metrics.RecordOperation(c.Request.Context(), "gateway", "filter", "allow")
		c.Next()
	}
}

// isOpenRoute checks the path against the configured open prefixes.
func (f *AuthFilter) isOpenRoute(path string) bool {
	for _, prefix := range f.openRoutes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractBearer pulls the token out of an Authorization header value.
func extractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// injectIdentity strips any inbound identity headers and sets them from the
// verified claims. Inbound values are attacker-controlled; the strip makes
// spoofing impossible. The same identity is echoed into the response headers
// best-effort.
func (f *AuthFilter) injectIdentity(c *gin.Context, claims *authService.Claims) {
	for _, header := range identityHeaders {
		c.Request.Header.Del(header)
	}

	c.Request.Header.Set(HeaderUserName, claims.Subject)
	c.Request.Header.Set(HeaderUserID, claims.PrincipalID)
	c.Request.Header.Set(HeaderUserRole, claims.Role)
	c.Request.Header.Set(HeaderUserModule, claims.Module)
	c.Request.Header.Set(HeaderAccountID, claims.AccountID)

	c.Header(HeaderUserName, claims.Subject)
	c.Header(HeaderUserRole, claims.Role)
	c.Header(HeaderUserModule, claims.Module)
}

// reject aborts the request with the mapped status for err and counts the
// decision.
func (f *AuthFilter) reject(c *gin.Context, err error, decision string) {
	f.metrics.RecordOperation(c.Request.Context(), "gateway", "filter", decision)
	httputil.HandleErrorGin(c, err, f.logger)
	c.Abort()
}
