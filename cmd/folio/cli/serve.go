package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/folioapp/folio/internal/server"
	"github.com/folioapp/folio/internal/service"
)

const banner = `
  __       _ _
 / _| ___ | (_) ___
| |_ / _ \| | |/ _ \
|  _| (_) | | | (_) |
|_|  \___/|_|_|\___/
`

// minSecretLen is the length below which the session secret and setup token
// draw a startup warning.
const minSecretLen = 32

// janitorInterval is how often expired sessions are reaped during serve.
const janitorInterval = time.Hour

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the folio API server",
		Long:  "Start the HTTP server that exposes the site content API and the admin endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, localhost CORS)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logger := newLogger(dev)

	// Required secrets. A deployment without them cannot bootstrap an admin
	// or sign sessions, so refuse to start.
	setupToken := viper.GetString("auth.setup_token")
	sessionSecret := viper.GetString("auth.session_secret")
	if setupToken == "" {
		return fmt.Errorf("auth.setup_token is required (set FOLIO_AUTH_SETUP_TOKEN)")
	}
	if sessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required (set FOLIO_AUTH_SESSION_SECRET)")
	}
	if len(setupToken) < minSecretLen {
		logger.Warn("setup token is shorter than recommended", "min_length", minSecretLen)
	}
	if len(sessionSecret) < minSecretLen {
		logger.Warn("session secret is shorter than recommended", "min_length", minSecretLen)
	}

	environment := viper.GetString("environment")
	if environment == "" {
		environment = "development"
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store initialized", "driver", viper.GetString("database.driver"))

	auth := service.NewAuthService(st, setupToken, logger)
	sessions := service.NewSessionService(st, sessionSecret, logger)
	content := service.NewContentService(st, logger)

	// First-run hint.
	hasAdmin, err := auth.CheckAdminExists(context.Background())
	if err != nil {
		logger.Warn("failed to check for admin", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no admin account found - POST /api/admin/setup with the setup token, or run: folio admin create")
	}

	// Reap expired sessions in the background for the lifetime of the server.
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runSessionJanitor(janitorCtx, sessions, logger)

	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	srvCfg.Environment = environment
	if origins := viper.GetStringSlice("server.cors_origins"); len(origins) > 0 && !dev {
		srvCfg.CORSOrigins = origins
	}

	srv := server.New(srvCfg, auth, sessions, content, logger)

	fmt.Printf("→ folio (%s)\n", environment)
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Site data:  http://%s:%d/api/site-data\n", host, port)
	fmt.Printf("→ Health:     http://%s:%d/health\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

// runSessionJanitor periodically deletes expired sessions until ctx is done.
func runSessionJanitor(ctx context.Context, sessions *service.SessionService, logger *slog.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.PurgeExpired(ctx); err != nil {
				logger.Error("session janitor failed", "error", err)
			}
		}
	}
}
