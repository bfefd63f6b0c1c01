// ABOUTME: Entry point for the authgate authentication server
// ABOUTME: Subcommands: serve, health, create-admin

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/fernworks/authgate/internal/auth"
	"github.com/fernworks/authgate/internal/config"
	"github.com/fernworks/authgate/internal/httpapi"
	"github.com/fernworks/authgate/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "create-admin":
		err = runCreateAdmin(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: authgate <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve           Start the authentication server")
	fmt.Println("  health          Check server health")
	fmt.Println("  create-admin    Seed an admin account directly in the store")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  AUTHGATE_CONFIG  Config file path (default: ./config.yaml)")
	fmt.Println("  AUTHGATE_URL     Server base URL for health checks (default: http://localhost:8000)")
}

// configPath resolves the configuration file location.
func configPath() string {
	if path := os.Getenv("AUTHGATE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// setupLogger installs the process-wide slog handler per the logging config.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// initStore opens the configured user directory backend.
func initStore(ctx context.Context, cfg *config.Config) (store.UserStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Database.DSN)
	default:
		return store.NewSQLiteStore(cfg.Database.Path)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	setupLogger(cfg)

	users, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer users.Close()

	codec, err := auth.NewJWTCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}

	server := httpapi.New(cfg, users, codec, slog.Default())
	return server.Run(ctx)
}

func runHealth(ctx context.Context) error {
	baseURL := os.Getenv("AUTHGATE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d: %s", resp.StatusCode, body)
	}

	fmt.Printf("Server healthy: %s", body)
	return nil
}

// runCreateAdmin seeds an admin account. Registration through the API always
// creates regular users, so the first admin has to come from here.
func runCreateAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	name := fs.String("name", "", "display name (required)")
	email := fs.String("email", "", "email address (required)")
	password := fs.String("password", "", "password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("create-admin requires -name, -email and -password")
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	setupLogger(cfg)

	users, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer users.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &store.User{
		ID:           uuid.NewString(),
		Name:         *name,
		Email:        *email,
		PasswordHash: hash,
		Role:         store.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.CreateUser(ctx, admin); err != nil {
		return err
	}

	fmt.Printf("Created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
