package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/api"
	"github.com/vovakirdan/tui-snake/internal/config"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

// shutdownTimeout bounds how long open sessions and requests may finish.
const shutdownTimeout = 10 * time.Second

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagRateLimit   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH game server and the HTTP API",
	Long: `Start an SSH server that lets users connect and play, and an HTTP
server with the leaderboard API, a websocket score feed and Prometheus
metrics. Both share one scores database.

Each SSH connection gets its own session. The SSH user name is used as the
player name when it is valid, otherwise the login screen asks for one.

Host key handling:
  - The key at --host-key is used, or generated there on first start

HTTP endpoints:
  GET  /health, /health/db
  GET  /api/v1/leaderboard?limit&offset&mode&sort
  POST /api/v1/leaderboard
  GET  /api/v1/leaderboard/stats/summary
  GET  /api/v1/leaderboard/{username}
  GET  /ws
  GET  /metrics

Examples:
  snake serve                           # SSH on :23234, HTTP on :8080
  snake serve --ssh :2222               # Listen on port 2222
  snake serve --http ""                 # SSH only
  snake serve --ssh "" --http :9000     # HTTP only
  snake serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	def := config.DefaultServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", def.SSHAddr, "SSH server address, empty disables")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", def.HTTPAddr, "HTTP API address, empty disables")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", def.HostKeyPath, "Path to host key file (generated if missing)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", def.IdleTimeout, "Disconnect idle SSH sessions after this long, 0 disables")
	serveCmd.Flags().IntVar(&flagRateLimit, "rate-limit", def.RateLimit, "Score submissions per minute per client, 0 disables")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := config.ServerConfig{
		SSHAddr:     flagSSHAddr,
		HTTPAddr:    flagHTTPAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		IdleTimeout: flagIdleTimeout,
		LogLevel:    flagLogLevel,
		RateLimit:   flagRateLimit,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid server settings: %v\n", err)
		os.Exit(1)
	}

	if err := serve(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// serve runs the enabled servers until SIGINT or SIGTERM, or until one of
// them fails, then shuts both down.
func serve(cfg config.ServerConfig) error {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := leaderboard.NewService(store, leaderboard.WithLogger(logger.WithPrefix("leaderboard")))
	metrics := api.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 2)

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		hub := api.NewHub(logger.WithPrefix("ws"))
		go hub.Run(ctx)

		handler := api.NewServer(svc, api.Options{
			Logger:    logger.WithPrefix("http"),
			Metrics:   metrics,
			Hub:       hub,
			RateLimit: cfg.RateLimit,
		})
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("starting HTTP server", "address", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	var sshServer *tui.SSHServer
	if cfg.SSHAddr != "" {
		sshServer, err = tui.NewSSHServer(cfg, tui.Deps{
			Leaderboard: svc,
			Reporter:    leaderboard.NewReporter(svc, logger.WithPrefix("reporter"), 0),
			Observer:    metrics,
			Logger:      logger,
		})
		if err != nil {
			stop()
			if httpServer != nil {
				httpServer.Close()
			}
			return err
		}
		go func() {
			if err := sshServer.ListenAndServe(); err != nil {
				errc <- fmt.Errorf("ssh: %w", err)
			}
		}()
		fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(cfg.SSHAddr))
	}
	fmt.Println("Press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errc:
		logger.Error("server failed", "err", runErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if sshServer != nil {
		if err := sshServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ssh shutdown: %w", err))
		}
	}
	return errors.Join(append([]error{runErr}, errs...)...)
}

// portOf returns the port of a listen address such as ":23234".
func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return port
}
