package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/ugaemi/roomrelay/internal/config"
	"github.com/ugaemi/roomrelay/internal/handler"
	"github.com/ugaemi/roomrelay/internal/room"
	"github.com/ugaemi/roomrelay/internal/store"
	"github.com/ugaemi/roomrelay/internal/ws"
)

const shutdownTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var configPath string

	cmd := &cobra.Command{
		Use:   "roomrelay",
		Short: "Room-based websocket relay server",
		Long: `roomrelay hosts short-lived game rooms over websocket.

Clients create or join a room by code, exchange chat and opaque game
messages, and may reconnect to their seat after a dropped connection.
Settings come from flags, environment variables and an optional config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg)
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	cmd.Flags().Int("port", config.Default().Port, "Listen port (env: PORT)")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var journal store.Journal = store.Discard
	var recorder *store.Recorder
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		recorder = store.NewRecorder(pg)
		journal = recorder
		slog.Info("room journal enabled")
	}

	hub := ws.NewHub(cfg.LivenessInterval)
	rm := room.NewManager(cfg.MaxCodeAttempts)
	router := handler.NewRouter(rm, handler.Options{
		Capacity:        cfg.RoomCapacity,
		ReconnectWindow: cfg.ReconnectWindow,
		Scheduler:       hub,
		Journal:         journal,
	})

	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		handleHealth(w, rm, hub)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case serveErr = <-errCh:
		slog.Error("server failed", "error", serveErr)
	}

	hub.Shutdown(ws.NewErrorMessage(handler.CodeServerShutdown, "server is shutting down"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			slog.Error("closing journal failed", "error", err)
		}
	}
	return serveErr
}

type healthResponse struct {
	Status  string `json:"status"`
	Rooms   int    `json:"rooms"`
	Clients int    `json:"clients"`
}

func handleHealth(w http.ResponseWriter, rm *room.Manager, hub *ws.Hub) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Rooms:   rm.RoomCount(),
		Clients: hub.ClientCount(),
	})
}

func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := hub.Accept(conn)
	slog.Debug("client accepted", "client", client.ID, "remote", r.RemoteAddr)
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
