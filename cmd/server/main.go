// Package main is the entry point for the event manager API server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (an optional .env file, then environment variables)
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in internal/ packages.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakif/event-manager/internal/server"
)

func main() {
	// === 1. LOAD .env ===
	// Values already present in the environment win over the file, so a
	// deployment can override anything the checked-in .env says.
	envErr := godotenv.Load()

	// === 2. SET UP LOGGING ===
	// LOG_LEVEL accepts debug, info, warn or error.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}))

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not read .env file", slog.String("error", envErr.Error()))
	}

	// === 3. READ CONFIGURATION ===
	port, err := envInt("PORT", 5001)
	if err != nil {
		logger.Error("invalid PORT value", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authLimit, err := envInt("AUTH_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		logger.Error("invalid AUTH_RATE_LIMIT_PER_MINUTE value", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ACCESS_TOKEN_SECRET must be a long random string. Use:
	//   ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
	// JWT_SECRET is accepted as a fallback name.
	jwtSecret := envStr("ACCESS_TOKEN_SECRET", os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		logger.Error("ACCESS_TOKEN_SECRET is not set")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:                   port,
		DataDir:                envStr("DATA_DIR", "data"),
		JWTSecret:              jwtSecret,
		AuthRateLimitPerMinute: authLimit,
		CORSAllowedOrigins:     splitList(envStr("CORS_ALLOWED_ORIGINS", "*")),
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + ": " + strconv.Quote(v) + " is not an integer")
	}
	return n, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
