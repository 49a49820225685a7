package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/defistate/oracle-registry-go/api"
	"github.com/defistate/oracle-registry-go/cmd/registryd/config"
	ethpkg "github.com/defistate/oracle-registry-go/pkg/chains/ethereum"
	"github.com/defistate/oracle-registry-go/proxy"
	"github.com/defistate/oracle-registry-go/registry"
)

const (
	defaultEventBufferSize = 100
	shutdownTimeout        = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.RegistryConfig, logger *slog.Logger) error {
	client, err := ethpkg.Dial(ctx, cfg.RPCURL, logger.With("component", "eth-dial"))
	if err != nil {
		return err
	}
	defer client.Close()

	// Owner identity: derived from the key when one is configured so the
	// relay signs as the account the deployers recognize; otherwise the
	// configured address (read-only mode).
	owner := cfg.OwnerAddress()
	var auth *bind.TransactOpts
	if cfg.OwnerKey != "" {
		key, err := crypto.HexToECDSA(cfg.OwnerKey)
		if err != nil {
			return err
		}
		if auth, err = bind.NewKeyedTransactorWithChainID(key, cfg.ChainIDBig()); err != nil {
			return err
		}
		if derived := crypto.PubkeyToAddress(key.PublicKey); derived != owner {
			logger.Warn("owner_key does not match configured owner, using derived address",
				"configured", owner.Hex(), "derived", derived.Hex())
			owner = derived
		}
	} else {
		logger.Warn("no owner_key configured; relay transactions are disabled")
	}

	promRegistry := prometheus.NewRegistry()
	metrics := registry.NewMetrics(promRegistry)
	httpMetrics := api.NewHTTPMetrics(promRegistry)

	bufferSize := cfg.EventBufferSize
	if bufferSize == 0 {
		bufferSize = defaultEventBufferSize
	}
	fanout := registry.NewFanout(bufferSize)
	sink := registry.MultiSink{
		registry.SlogSink{Logger: logger.With("component", "registry-events")},
		fanout,
	}

	validator := registry.NewValidator(
		ethpkg.NewFeedClient(client),
		ethpkg.NewTokenClient(client),
		true,
	)
	connector := ethpkg.NewDeployerConnector(client, auth)

	factory := func(state *registry.State) (*registry.Registry, error) {
		return registry.New(registry.Config{
			Version:                    cfg.Version,
			State:                      state,
			Validator:                  validator,
			Deployers:                  connector,
			Logger:                     logger.With("component", "registry"),
			Sink:                       sink,
			Metrics:                    metrics,
			MaxBaseTokensPerSuggestion: cfg.MaxBaseTokensPerSuggestion,
			MaxAssociatedTokens:        cfg.MaxAssociatedTokens,
		})
	}

	handle, err := proxy.New(factory)
	if err != nil {
		return err
	}
	if err := handle.Initialize(owner); err != nil && !errors.Is(err, registry.ErrAlreadyInitialized) {
		return err
	}

	server, err := api.NewServer(api.Config{
		Handle:     handle,
		Owner:      owner,
		AdminToken: cfg.AdminToken,
		Logger:     logger.With("component", "api"),
		Gatherer:   promRegistry,
		Metrics:    httpMetrics,
		Events:     fanout,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("registry API listening",
			"addr", cfg.ListenAddr, "chain_id", cfg.ChainID, "version", cfg.Version,
			"owner", owner.Hex())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
