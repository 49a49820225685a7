// Package api exposes the registry over HTTP: unauthenticated read
// queries and permissionless suggestions, plus owner-gated administrative
// mutations behind a bearer token.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/defistate/oracle-registry-go/proxy"
	"github.com/defistate/oracle-registry-go/registry"
)

// Config holds the configuration for the API server.
type Config struct {
	// Handle is the registry deployment served by this API.
	Handle *proxy.Handle

	// Owner is the caller identity used for admin mutations once the
	// bearer token checks out.
	Owner common.Address

	// AdminToken authorizes admin mutations. Empty disables them.
	AdminToken string

	// Logger receives request logs.
	Logger *slog.Logger

	// Gatherer serves /metrics. Optional.
	Gatherer prometheus.Gatherer

	// Metrics records HTTP request metrics. Optional.
	Metrics *HTTPMetrics

	// Events, when set, is exposed as a server-sent event stream at
	// /v1/events.
	Events *registry.Fanout
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Handle == nil {
		return errors.New("config: Handle is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// Server routes HTTP requests to the registry.
type Server struct {
	router     *mux.Router
	registry   *proxy.Handle
	owner      common.Address
	adminToken string
	logger     *slog.Logger
}

// NewServer builds the router and all handlers.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		registry:   cfg.Handle,
		owner:      cfg.Owner,
		adminToken: cfg.AdminToken,
		logger:     cfg.Logger,
	}

	r := mux.NewRouter()
	r.Use(loggingMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(metricsMiddleware(cfg.Metrics))
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	// Unauthenticated reads.
	v1.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	v1.HandleFunc("/owner", s.handleOwner).Methods(http.MethodGet)
	v1.HandleFunc("/deployers", s.handleListDeployers).Methods(http.MethodGet)
	v1.HandleFunc("/deployers/{deployer}/feeds", s.handleDeployerFeeds).Methods(http.MethodGet)
	v1.HandleFunc("/feeds/pending", s.handlePendingFeeds).Methods(http.MethodGet)
	v1.HandleFunc("/feeds/orphaned", s.handleOrphanedFeeds).Methods(http.MethodGet)
	v1.HandleFunc("/feeds/{quote}/{feed}", s.handleGetFeed).Methods(http.MethodGet)
	v1.HandleFunc("/tokens/pending", s.handlePendingBaseTokens).Methods(http.MethodGet)
	if cfg.Events != nil {
		v1.HandleFunc("/events", s.handleEvents(cfg.Events)).Methods(http.MethodGet)
	}

	// Permissionless suggestions.
	v1.HandleFunc("/feeds/suggestions", s.handleSuggestFeed).Methods(http.MethodPost)
	v1.HandleFunc("/tokens/suggestions", s.handleSuggestBaseToken).Methods(http.MethodPost)

	// Owner-gated mutations.
	admin := v1.NewRoute().Subrouter()
	admin.Use(s.adminMiddleware)
	admin.HandleFunc("/deployers", s.handleAddDeployer).Methods(http.MethodPost)
	admin.HandleFunc("/deployers/{deployer}", s.handleRemoveDeployer).Methods(http.MethodDelete)
	admin.HandleFunc("/deployers/{deployer}/call", s.handleCallDeployer).Methods(http.MethodPost)
	admin.HandleFunc("/feeds/pending/{index}/approve", s.handleApproveFeed).Methods(http.MethodPost)
	admin.HandleFunc("/feeds/{quote}/{feed}", s.handleRemoveFeed).Methods(http.MethodDelete)
	admin.HandleFunc("/tokens", s.handleAssociateToken).Methods(http.MethodPost)
	admin.HandleFunc("/tokens/pending/{index}/approve", s.handleApproveBaseToken).Methods(http.MethodPost)
	admin.HandleFunc("/tokens/{quote}/{feed}/{token}", s.handleRemoveToken).Methods(http.MethodDelete)

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
