package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adapthttp "bodymetrics/internal/adapter/http"
	"bodymetrics/internal/adapter/jsonfile"
	"bodymetrics/internal/adapter/memory"
	"bodymetrics/internal/adapter/postgres"
	"bodymetrics/internal/app"
	"bodymetrics/internal/config"
	"bodymetrics/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		hashPassword()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := memory.New()
	sessions := domain.SessionRepository(mem.NewSessionRepo())

	var storage domain.HistoryStorage
	switch cfg.HistoryStore {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = db.Close() }()
		storage = db
		sessions = postgres.NewSessionRepo(db)
	case config.StoreMemory:
		storage = mem
	default:
		store := jsonfile.New(cfg.HistoryFile)
		logger.Info("history file", "path", store.Path())
		storage = store
	}
	logger.Info("history storage", "backend", cfg.HistoryStore)

	history := app.NewHistoryStore(storage, app.WithLogger(logger))
	log, err := history.Load(ctx)
	var warn *domain.CorruptDataWarning
	switch {
	case errors.As(err, &warn):
		// Load already logged the reset; the log starts empty.
	case err != nil:
		return err
	default:
		logger.Info("history loaded", "records", len(log))
	}

	metrics := app.NewMetricsService(history, cfg.ActivityLevel)
	analytics := app.NewAnalyticsService(history)
	authSvc := app.NewAuthService(domain.Owner{
		Username:     cfg.OwnerUsername,
		PasswordHash: cfg.OwnerPasswordHash,
		Email:        cfg.OwnerEmail,
	}, sessions)

	oidcConfig, err := setupOIDC(ctx, cfg.OIDC)
	if err != nil {
		return err
	}

	srv := adapthttp.New(metrics, history, analytics, authSvc, oidcConfig, cfg.WebDir, logger)
	if cfg.DisableAuth {
		logger.Warn("authentication disabled")
		srv = srv.WithoutAuth()
	}

	go pruneSessions(ctx, authSvc, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setupOIDC(ctx context.Context, c config.OIDC) (adapthttp.OIDCConfig, error) {
	if !c.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, c.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, fmt.Errorf("oidc provider: %w", err)
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email"},
		},
	}, nil
}

func pruneSessions(ctx context.Context, authSvc *app.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authSvc.PruneSessions(ctx); err != nil {
				logger.Warn("prune sessions", "error", err)
			}
		}
	}
}

// hashPassword reads a password from stdin and prints the bcrypt hash to
// use as OWNER_PASSWORD_HASH.
func hashPassword() {
	fmt.Fprint(os.Stderr, "Password: ")
	password, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	password = strings.TrimSpace(password)
	if password == "" {
		fmt.Fprintln(os.Stderr, "empty password")
		os.Exit(1)
	}
	hash, err := app.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
