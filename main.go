// Command cryptochat runs the encrypted chat relay server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"cryptochat-backend/config"
	"cryptochat-backend/handlers"
	"cryptochat-backend/logging"
	"cryptochat-backend/metrics"
	"cryptochat-backend/registry"
	"cryptochat-backend/session"
)

const shutdownTimeout = 10 * time.Second

// Config holds the command line configuration
type Config struct {
	ConfigFile string
}

// newRootCommand creates the root cobra command
func newRootCommand() *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "cryptochat",
		Short: "Encrypted chat relay server",
		Long: `cryptochat relays chat messages protected by a runtime-selected cipher.
Clients negotiate a symmetric key over RSA or ECC on the /ws websocket, then
send encrypted messages that the server decrypts, marks and re-encrypts.
A stateless classical cipher relay is served on /ws/relay and the ciphers
are also exposed as REST endpoints under /api/v1.`,
		Example: `
  # Start with built-in defaults on :5000
  cryptochat

  # Start with a configuration file
  cryptochat -c /etc/cryptochat/cryptochat.toml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.ConfigFile, "config", "c", "",
		"path to the server configuration file (TOML format)")

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(file string) (*config.Config, error) {
	if file == "" {
		cfg, err := config.Default()
		if err != nil {
			return nil, fmt.Errorf("invalid default configuration: %v", err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %v", err)
	}
	return cfg, nil
}

// runServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func runServer(opts Config) error {
	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return err
	}

	backend, err := logging.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %v", err)
	}
	defer backend.Close()
	log := backend.GetLogger("main")

	gin.SetMode(cfg.Server.GinMode)
	router, err := newRouter(cfg, backend)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Noticef("Server starting on %s", cfg.Server.Address)
		log.Noticef("  GET  /api/v1/health            - Health check")
		log.Noticef("  GET  /api/v1/algorithms        - Supported algorithms")
		log.Noticef("  POST /api/v1/cipher/encrypt    - Encrypt a message")
		log.Noticef("  POST /api/v1/cipher/decrypt    - Decrypt a message")
		log.Noticef("  GET  /ws                       - Key exchange and encrypted chat")
		log.Noticef("  GET  /ws/relay                 - Classical cipher relay")
		if cfg.Metrics.Enable {
			log.Noticef("  GET  %-26s - Prometheus metrics", cfg.Metrics.Path)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Notice("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %v", err)
	}
	return nil
}

func newRouter(cfg *config.Config, backend *logging.Backend) (*gin.Engine, error) {
	accessLog, err := backend.GetLogWriter("http", "INFO")
	if err != nil {
		return nil, err
	}
	errorLog, err := backend.GetLogWriter("http", "ERROR")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(accessLog), gin.RecoveryWithWriter(errorLog))

	corsConfig := cors.DefaultConfig()
	if slices.Contains(cfg.Server.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	symmetric := registry.NewSymmetric()
	keyExchange := registry.NewKeyExchange()
	engine := session.NewEngine(symmetric, keyExchange,
		session.WithTransform(session.PrefixTransform(cfg.Session.Prefix())),
		session.WithRSAKeyBits(cfg.Session.RSAKeyBits),
		session.WithLogger(backend.GetLogger("session")),
	)

	cipherHandler := handlers.NewCipherHandler(symmetric, keyExchange)
	chatHandler := handlers.NewChatHandler(engine, handlers.NewSessionStore(), cfg.Server.AllowOrigins, backend.GetLogger("ws"))
	relayHandler := handlers.NewRelayHandler(symmetric, cfg.Server.AllowOrigins, backend.GetLogger("relay"))

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", cipherHandler.HealthCheck)
		api.GET("/algorithms", cipherHandler.Algorithms)

		cipher := api.Group("/cipher")
		{
			cipher.POST("/encrypt", cipherHandler.Encrypt)
			cipher.POST("/decrypt", cipherHandler.Decrypt)
		}
	}

	router.GET("/ws", chatHandler.ServeWS)
	router.GET("/ws/relay", relayHandler.ServeWS)

	if cfg.Metrics.Enable {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	return router, nil
}
