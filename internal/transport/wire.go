package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcpkit/mcpcore/internal/config"
	"github.com/mcpkit/mcpcore/internal/oauth"
	"github.com/mcpkit/mcpcore/internal/session"
	"github.com/mcpkit/mcpcore/internal/transport/internal/handlers"
	transporthttp "github.com/mcpkit/mcpcore/internal/transport/internal/http"
	"github.com/mcpkit/mcpcore/internal/transport/internal/middleware"
	pkgoauth "github.com/mcpkit/mcpcore/pkg/oauth"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewAuthMiddleware creates OAuth authentication middleware.
// It validates Bearer tokens and enforces scope requirements.
// The metadataURL is included in WWW-Authenticate headers for client discovery.
func NewAuthMiddleware(
	validator oauth.TokenValidator,
	responder ErrorResponder,
	metadataURL string,
) AuthMiddleware {
	// Use default scopes for authentication
	defaultScopes := []string{pkgoauth.ScopeRead}
	return middleware.NewAuthMiddleware(validator, responder, metadataURL, defaultScopes)
}

// NewErrorResponder creates an error responder with the given metadata URL.
// The responder formats HTTP error responses according to OAuth 2.1 and RFC 9728.
func NewErrorResponder(metadataURL string) ErrorResponder {
	return transporthttp.NewErrorResponder(metadataURL)
}

// NewMetadataHandler creates the OAuth protected resource metadata handler.
// It serves metadata at /.well-known/oauth-protected-resource per RFC 9728.
func NewMetadataHandler(service oauth.MetadataService, responder ErrorResponder) http.Handler {
	return handlers.NewMetadataHandler(service, responder)
}

// NewMCPHandler creates the MCP protocol handler. newEngine mints one
// session.Engine per new Mcp-Session-Id; authentication and
// method-keyed authorization both happen inside the Engine, not in
// HTTP middleware, so this handler never wraps /mcp in path-based
// scope middleware (see SPEC_FULL.md's authorization-by-method
// requirement).
func NewMCPHandler(newEngine session.EngineFactory, responder ErrorResponder, maxBodyBytes int64) http.Handler {
	return handlers.NewMCPHandler(newEngine, responder, maxBodyBytes)
}

// NewHealthHandler creates the health check handler.
// It provides a simple health status endpoint.
func NewHealthHandler(responder ErrorResponder) http.Handler {
	return handlers.NewHealthHandler(responder)
}

// NewLoggingMiddleware creates request logging middleware.
// It logs HTTP request details using structured logging.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// MetadataService provides protected resource metadata. Only
	// required when ServerConfig.AuthStrategy is "oauth2" (metadata
	// discovery is meaningless without an authorization server to
	// point at).
	MetadataService oauth.MetadataService

	// NewEngine mints a fresh session.Engine for a new HTTP session.
	// One call per Mcp-Session-Id; see internal/session.
	NewEngine session.EngineFactory
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.NewEngine == nil {
		return nil, nil, fmt.Errorf("new engine factory cannot be nil")
	}

	metadataURL := cfg.ServerConfig.BaseURL
	if cfg.MetadataService != nil {
		metadataURL = cfg.MetadataService.GetMetadataURL()
	}

	// Create error responder
	responder := NewErrorResponder(metadataURL)

	// Create middleware
	recoveryMiddleware := NewRecoveryMiddleware(responder, nil)
	loggingMiddleware := NewLoggingMiddleware(nil)

	// Create handlers. The MCP endpoint authenticates and authorizes
	// per JSON-RPC message inside session.Engine, so no OAuth
	// middleware is applied to it here — doing so at the HTTP layer
	// would key authorization on the request path instead of the
	// method, which is exactly the mistake SPEC_FULL.md's
	// authorization model exists to avoid.
	mcpHandler := NewMCPHandler(cfg.NewEngine, responder, cfg.ServerConfig.HTTPMaxBodyBytes)
	healthHandler := NewHealthHandler(responder)

	// Create router
	router := NewRouter()

	// Apply global middleware
	router.Use(recoveryMiddleware, loggingMiddleware)

	// Register routes
	router.Handle("GET /health", healthHandler)
	router.Handle("POST /mcp", mcpHandler)
	router.Handle("DELETE /mcp", mcpHandler)

	if cfg.MetadataService != nil {
		metadataHandler := NewMetadataHandler(cfg.MetadataService, responder)
		router.Handle("GET /.well-known/oauth-protected-resource", metadataHandler)
	}

	// Create server
	server := NewServer(cfg.ServerConfig, router)

	return server, router, nil
}
