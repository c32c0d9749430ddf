package adapthttp

import (
	"log/slog"
	"net/http"

	"bodymetrics/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the optional single sign-on setup.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	metrics     *app.MetricsService
	history     *app.HistoryStore
	analytics   *app.AnalyticsService
	authSvc     *app.AuthService
	oidcConfig  OIDCConfig
	webDir      string
	logger      *slog.Logger
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(ms *app.MetricsService, hs *app.HistoryStore, as *app.AnalyticsService, authSvc *app.AuthService, oidcConfig OIDCConfig, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		metrics:    ms,
		history:    hs,
		analytics:  as,
		authSvc:    authSvc,
		oidcConfig: oidcConfig,
		webDir:     webDir,
		logger:     logger,
	}
}

// WithoutAuth disables the session gate. Used for local runs and tests.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/auth/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/auth/session", s.handleSession)
	protected.HandleFunc("/metrics", s.handleMetrics)
	protected.HandleFunc("/history", s.handleHistory)
	protected.HandleFunc("/diet/latest", s.handleDietLatest)
	protected.HandleFunc("/charts/series", s.handleChartsSeries)
	protected.HandleFunc("/charts/zones", s.handleChartsZones)
	protected.HandleFunc("/stats", s.handleStats)
	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.webDir != "" {
		root.Handle("/", spaFromDisk(s.webDir))
	}

	return withNoCache(s.loggingMiddleware(root))
}
