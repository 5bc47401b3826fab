package gateway

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	apphttputil "github.com/allisson/authgate/internal/httputil"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// UpstreamRouter forwards requests to upstream services keyed by the first
// path segment. Routes come from configuration as comma-separated
// "segment=baseURL" pairs, e.g. "med=http://medical:8081,billing=http://billing:8082".
type UpstreamRouter struct {
	proxies map[string]*httputil.ReverseProxy
	logger  *slog.Logger
}

// NewUpstreamRouter parses the route table and builds one reverse proxy per
// upstream.
func NewUpstreamRouter(routes string, logger *slog.Logger) (*UpstreamRouter, error) {
	proxies := make(map[string]*httputil.ReverseProxy)

	for _, pair := range strings.Split(routes, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		segment, rawURL, found := strings.Cut(pair, "=")
		if !found || segment == "" || rawURL == "" {
			return nil, apperrors.New("invalid upstream route entry: " + pair)
		}

		target, err := url.Parse(rawURL)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid upstream URL for "+segment)
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, apperrors.New("upstream URL must be absolute: " + rawURL)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed",
				slog.String("upstream", segment),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			w.WriteHeader(http.StatusBadGateway)
		}

		proxies[segment] = proxy
	}

	return &UpstreamRouter{
		proxies: proxies,
		logger:  logger,
	}, nil
}

// Handler routes the request to the upstream owning its first path segment.
// Unknown segments get 404: the gateway only fronts configured services.
func (r *UpstreamRouter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		segment := firstSegment(c.Request.URL.Path)

		proxy, ok := r.proxies[segment]
		if !ok {
			apphttputil.HandleErrorGin(c,
				apperrors.Wrap(apperrors.ErrNotFound, "no upstream for path"), r.logger)
			return
		}

		proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// HasRoutes reports whether any upstream is configured.
func (r *UpstreamRouter) HasRoutes() bool {
	return len(r.proxies) > 0
}

// firstSegment extracts the leading path segment ("/med/records" -> "med").
func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	return segment
}
