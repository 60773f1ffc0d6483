package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"teamgate/internal/api"
	"teamgate/internal/app"
	"teamgate/internal/config"
	internaldb "teamgate/internal/db"
	"teamgate/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	logger.Info("running identity store migrations")
	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	local, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	var oidc middleware.TokenValidator
	if cfg.Auth.OIDCEnabled() {
		if cfg.Auth.JWKSURL != "" {
			oidc, err = middleware.NewOIDCValidatorFromJWKS(ctx,
				cfg.Auth.JWKSURL, cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
		} else {
			oidc, err = middleware.NewOIDCValidator(ctx,
				cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
		}
		if err != nil {
			return err
		}
		logger.Info("external identity provider configured", "issuer", cfg.Auth.IssuerURL)
	}

	var keySvc = a.Services.APIKey
	if !cfg.Auth.APIKeyEnabled {
		keySvc = nil
	}
	auth := middleware.NewAuthenticator(local, oidc, a.Services.SignIn, keySvc, logger)

	handler := api.NewHandler(
		a.Services.User, a.Services.Team, a.Services.Permission,
		a.Services.Mapping, a.Services.APIKey,
		a.Services.Evaluator, a.Services.SignIn, a.Audit,
		[]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL,
	)
	router := api.NewRouter(handler, api.RouterConfig{
		Authenticator:      auth,
		Enforcer:           a.Services.Enforcer,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr)
		logger.Info("try it", "example", "curl http://"+curlHostForListenAddr(cfg.ListenAddr)+"/healthz")
		var err error
		if cfg.TLSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// curlHostForListenAddr turns a listen address into a host suitable for a
// copy-pasteable curl example. Wildcard and empty hosts become localhost.
func curlHostForListenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host + ":" + port
}
