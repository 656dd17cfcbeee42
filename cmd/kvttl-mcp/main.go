package main

import (
	"flag"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/leonardcser/kvttl/engine"
	"github.com/leonardcser/kvttl/internal/config"
	"github.com/leonardcser/kvttl/internal/logger"
	"github.com/leonardcser/kvttl/internal/tools"
	"github.com/leonardcser/kvttl/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("KVTTL_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	// stdout carries the MCP stream, so logs always go to a file.
	if cfg.LogPath != "" {
		err = logger.Init(cfg.LogPath)
	} else {
		err = logger.InitFromEnv()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting kvttl MCP server (engine=%s, namespace=%s)", cfg.Engine, cfg.Namespace)

	e, closer, err := openEngine(cfg)
	if err != nil {
		logger.Errorf("Failed to open %s engine: %v", cfg.Engine, err)
		panic(err)
	}
	defer closer.Close()

	store := storage.New(e, storage.Options{ID: cfg.Namespace})

	s := server.NewMCPServer(
		"kvttl",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("storage-get",
		mcp.WithDescription(multiline(
			"Reads a value from the key-value storage",
			"- Returns the stored value as JSON, or null when missing or expired",
			"- Strings that look like numbers or booleans are returned as numbers or booleans",
		)),
		mcp.WithString("key", mcp.Required(), mcp.Description("The key to read")),
	), tools.StorageGetHandler(store))

	s.AddTool(mcp.NewTool("storage-set",
		mcp.WithDescription(multiline(
			"Stores a value in the key-value storage",
			"- Valid JSON values are stored as structured data, anything else as text",
			"- Optionally expires after the given number of minutes",
		)),
		mcp.WithString("key", mcp.Required(), mcp.Description("The key to write")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value to store")),
		mcp.WithNumber("expires_in_minutes", mcp.Description("Minutes until the value expires")),
	), tools.StorageSetHandler(store))

	s.AddTool(mcp.NewTool("storage-remove",
		mcp.WithDescription("Removes a key and its expiration from the key-value storage"),
		mcp.WithString("key", mcp.Required(), mcp.Description("The key to remove")),
	), tools.StorageRemoveHandler(store))

	s.AddTool(mcp.NewTool("storage-clear",
		mcp.WithDescription("Removes every key in the configured namespace"),
	), tools.StorageClearHandler(store))
	logger.Infof("Registered storage tools")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openEngine(cfg *config.Config) (engine.Engine, io.Closer, error) {
	switch cfg.Engine {
	case config.EngineMemory:
		return engine.NewMemory(), nopCloser{}, nil
	case config.EngineBolt:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, err
		}
		db, err := engine.OpenBoltDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		ns, err := db.Namespace(cfg.Namespace)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return ns, db, nil
	case config.EngineRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return engine.NewRedis(client, cfg.Namespace, cfg.Redis.Timeout), client, nil
	case config.EngineSocket:
		client, err := connectDaemon(cfg)
		return client, nopCloser{}, err
	}
	return nil, nil, errors.Errorf("unknown engine %q", cfg.Engine)
}

// connectDaemon pings the daemon socket, starting kvttl-daemon if nothing answers.
func connectDaemon(cfg *config.Config) (*engine.Client, error) {
	client := engine.NewClient(cfg.Socket, cfg.Namespace)
	logger.Infof("Attempting to connect to engine daemon at %s", cfg.Socket)
	err := client.Ping()
	if err == nil {
		return client, nil
	}
	logger.Warnf("Failed to connect to engine daemon: %v, attempting to start daemon", err)
	if startErr := startDaemon(); startErr != nil {
		logger.Errorf("Failed to start engine daemon: %v", startErr)
	}
	// wait for socket to appear
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err = client.Ping(); err == nil {
			logger.Infof("Successfully connected to engine daemon")
			return client, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil, err
}

func startDaemon() error {
	var candidates []string
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), "kvttl-daemon"))
	}
	if path, err := exec.LookPath("kvttl-daemon"); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "./kvttl-daemon")

	for _, bin := range candidates {
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin)
		cmd.Stdout = nil
		cmd.Stderr = nil
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}
