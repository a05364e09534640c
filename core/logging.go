package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SetupLogging configures a slog text logger writing to both stdout and an
// append-only file in cfg.LogDir, and points gin's writers at the same sink.
// Caller should close the returned io.Closer on shutdown.
func SetupLogging(cfg Config, filename string) (*slog.Logger, io.Closer, error) {
	dir := cfg.LogDir
	if dir == "" {
		dir = "./logs"
	}
	if filename == "" {
		filename = "app.log"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mw := io.MultiWriter(os.Stdout, f)
	gin.DefaultWriter = mw
	gin.DefaultErrorWriter = mw

	level := slog.LevelDebug
	if cfg.Production() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(mw, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return logger, f, nil
}
