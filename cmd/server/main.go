// Package main provides the entry point for the MCP server. It wires
// together all components using dependency injection and manages the
// server lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcpkit/mcpcore/internal/auth"
	"github.com/mcpkit/mcpcore/internal/authz"
	"github.com/mcpkit/mcpcore/internal/config"
	"github.com/mcpkit/mcpcore/internal/mcp"
	"github.com/mcpkit/mcpcore/internal/oauth"
	"github.com/mcpkit/mcpcore/internal/session"
	"github.com/mcpkit/mcpcore/internal/transport"
	"github.com/mcpkit/mcpcore/internal/transport/stdio"
)

const (
	serverName    = "mcpcore"
	serverVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.Info("server configuration loaded",
		"transport", cfg.Transport,
		"auth_strategy", cfg.AuthStrategy,
	)

	authStrategy, metadataService, err := wireAuth(cfg)
	if err != nil {
		log.Fatalf("failed to wire auth strategy: %v", err)
	}

	authzPolicy := authz.NewPolicy(nil)

	dispatcher, tools, resources, prompts, _ := mcp.NewMCPServices(&mcp.Config{
		ServerName:    serverName,
		ServerVersion: serverVersion,
	})
	_ = tools     // available for registering custom tools before traffic starts
	_ = resources // available for registering custom resources
	_ = prompts   // available for registering custom prompts

	newEngine := func() *session.Engine {
		return session.NewServerEngine(dispatcher, authStrategy, authzPolicy, serverName, serverVersion, session.DefaultServerCapabilities())
	}

	switch cfg.Transport {
	case "stdio":
		runStdio(newEngine)
	case "http":
		runHTTP(cfg, metadataService, newEngine)
	default:
		log.Fatalf("unknown MCP_TRANSPORT %q", cfg.Transport)
	}
}

// wireAuth builds the auth.Strategy named by cfg.AuthStrategy. The
// OAuth metadata service is only constructed (and only non-nil) when
// the oauth2 strategy is actually selected, matching internal/config's
// conditional OAuth validation.
func wireAuth(cfg *config.Config) (auth.Strategy, oauth.MetadataService, error) {
	switch cfg.AuthStrategy {
	case "", "none":
		return auth.NewNoAuthStrategy(), nil, nil
	case "apikey":
		return auth.NewApiKeyStrategy(cfg.ApiKeyHeader, cfg.ApiKeys), nil, nil
	case "oauth2":
		oauthCfg := &oauth.Config{
			BaseURL:              cfg.BaseURL,
			AuthorizationServers: cfg.AuthorizationServers,
			Audience:             cfg.Audience,
			ScopesSupported:      cfg.ScopesSupported,
			JWKSCacheTTL:         cfg.JWKSCacheTTL,
			ClockSkew:            cfg.ClockSkew,
		}
		tokenValidator, metadataService, _, _ := oauth.NewOAuthServices(oauthCfg)
		strategy, err := auth.NewStrategy(&auth.Config{Kind: auth.StrategyOAuth2, TokenValidator: tokenValidator})
		if err != nil {
			return nil, nil, err
		}
		return strategy, metadataService, nil
	default:
		strategy, err := auth.NewStrategy(&auth.Config{Kind: auth.StrategyKind(cfg.AuthStrategy)})
		return strategy, nil, err
	}
}

func runStdio(newEngine func() *session.Engine) {
	engine := newEngine()
	slog.Info("starting stdio transport")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stdio.Serve(ctx, os.Stdin, os.Stdout, engine, slog.Default()); err != nil {
		log.Fatalf("stdio transport error: %v", err)
	}
	slog.Info("stdio transport closed")
}

func runHTTP(cfg *config.Config, metadataService oauth.MetadataService, newEngine session.EngineFactory) {
	transportCfg := &transport.Config{
		ServerConfig:    cfg,
		MetadataService: metadataService,
		NewEngine:       newEngine,
	}

	server, router, err := transport.NewTransportServices(transportCfg)
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}
	_ = router // used internally by server

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting http transport", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped successfully")
}
