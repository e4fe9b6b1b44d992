// Command askouija starts the Ask Ouija server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, WebSocket board events, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server backed by an internal loopback API, or by --api-url when given
//
// Flags control the dictionary, host/port, idle timeout, logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/askouija/api"
	"github.com/wricardo/askouija/game/catalog"
	"github.com/wricardo/askouija/game/service"
	"github.com/wricardo/askouija/game/session"
	"github.com/wricardo/askouija/transport/mcp"
	"github.com/wricardo/askouija/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Ask Ouija"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("askouija exited")
	}
}

// newApp builds the command tree. Global flags are inherited by subcommands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "askouija",
		Usage:   "Let the spirits answer, one capital letter at a time",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dict",
				Usage:   "Dictionary file, one word per line; becomes the default dictionary",
				Sources: cli.EnvVars("ASKOUIJA_DICT"),
			},
			&cli.StringFlag{
				Name:    "dict-dir",
				Usage:   "Directory of extra <name>.txt dictionaries selectable per question",
				Sources: cli.EnvVars("ASKOUIJA_DICT_DIR"),
			},
			&cli.StringFlag{
				Name:  "host",
				Value: "localhost",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.DurationFlag{
				Name:  "idle-timeout",
				Value: session.DefaultIdleTimeout,
				Usage: "Drop boards with no activity for this long",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "json",
				Usage: "Log format (json or console)",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log-level"), cmd.String("log-format"))
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "Proxy to a running API instead of starting an internal one",
						Sources: cli.EnvVars("ASKOUIJA_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

// setupLogging configures the global zerolog logger. Logs go to stderr so
// stdout stays free for the MCP stdio transport.
func setupLogging(level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	switch format {
	case "json", "":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format %q (want json or console)", format)
	}
	return nil
}

// services bundles the in-process game stack
type services struct {
	catalog *catalog.Manager
	boards  *session.Manager
	ouija   service.OuijaService
}

// initializeServices loads the default dictionary and wires the board
// registry and the Ouija service.
func initializeServices(dictPath, dictDir string, idleTimeout time.Duration) (*services, error) {
	if dictPath == "" {
		return nil, errors.New("a dictionary file is required (--dict or ASKOUIJA_DICT)")
	}

	dicts, err := catalog.NewManager(dictDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create dictionary catalog: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(dictPath), filepath.Ext(dictPath))
	if _, err := dicts.LoadFile(name, dictPath); err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	boards := session.NewManager(idleTimeout)

	return &services{
		catalog: dicts,
		boards:  boards,
		ouija:   service.NewOuijaService(boards, dicts),
	}, nil
}

// janitorInterval sweeps often enough that an idle board never outlives its
// timeout by more than half of it.
func janitorInterval(idleTimeout time.Duration) time.Duration {
	return max(idleTimeout/2, time.Second)
}

// loopbackURL is the base URL the in-process MCP client uses to reach the API
func loopbackURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::", "[::]":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(port))
}

// newHandler combines the REST API, WebSocket hub and the /mcp endpoint
func newHandler(ouija service.OuijaService, hub *websocket.Hub, apiBaseURL string) http.Handler {
	apiServer := api.NewServer(ouija, hub)
	mcpClient := mcp.NewClient(apiBaseURL)
	apiServer.Handle("/mcp", mcpHandler(mcpClient.GetMCPServer()))
	return apiServer
}

// mcpHandler serves single JSON-RPC messages over HTTP POST
func mcpHandler(s *server.MCPServer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := s.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// runServe starts the HTTP server, hub, janitor and optional ngrok tunnel and
// blocks until ctx is cancelled or one of them fails.
func runServe(ctx context.Context, cmd *cli.Command) error {
	idleTimeout := cmd.Duration("idle-timeout")
	svcs, err := initializeServices(cmd.String("dict"), cmd.String("dict-dir"), idleTimeout)
	if err != nil {
		return err
	}

	host, port := cmd.String("host"), int(cmd.Int("port"))
	addr := net.JoinHostPort(host, fmt.Sprint(port))

	hub := websocket.NewHub()
	handler := newHandler(svcs.ouija, hub, loopbackURL(host, port))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		return svcs.boards.RunJanitor(gctx, janitorInterval(idleTimeout))
	})

	g.Go(func() error {
		log.Info().
			Str("addr", addr).
			Str("default_dictionary", svcs.catalog.DefaultName()).
			Dur("idle_timeout", idleTimeout).
			Msgf("%s v%s listening", AppName, Version)
		log.Info().Msgf("REST API: http://%s/api", addr)
		log.Info().Msgf("WebSocket: ws://%s/ws?channel=<channel_id>", addr)
		log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown: %w", err)
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		authToken, domain := cmd.String("ngrok-auth"), cmd.String("ngrok-domain")
		g.Go(func() error {
			return runNgrok(gctx, authToken, domain, handler)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. A tunnel
// that cannot start is logged, not fatal.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) error {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return nil
	}

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	srv := &http.Server{Handler: handler}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(tun)
	}()

	select {
	case <-ctx.Done():
		srv.Close()
		<-errc
		log.Info().Msg("ngrok tunnel closed")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ngrok server: %w", err)
	}
}

// runStdioMCP runs an MCP stdio server. Without --api-url it starts the API
// on a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	baseURL := cmd.String("api-url")
	if baseURL == "" {
		idleTimeout := cmd.Duration("idle-timeout")
		svcs, err := initializeServices(cmd.String("dict"), cmd.String("dict-dir"), idleTimeout)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("addr", listener.Addr().String()).Msg("internal HTTP server for MCP stdio")

		httpServer := &http.Server{Handler: api.NewServer(svcs.ouija, nil)}

		g.Go(func() error {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("internal HTTP server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			return svcs.boards.RunJanitor(gctx, janitorInterval(idleTimeout))
		})
	} else {
		log.Info().Str("api_url", baseURL).Msg("MCP stdio server using external API")
	}

	mcpClient := mcp.NewClient(baseURL)
	g.Go(func() error {
		// Stdin closing ends the session
		defer cancel()
		if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP stdio server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
