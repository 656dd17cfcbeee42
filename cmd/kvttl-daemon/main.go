package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leonardcser/kvttl/engine"
	"github.com/leonardcser/kvttl/internal/config"
	"github.com/leonardcser/kvttl/internal/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("KVTTL_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if cfg.LogPath != "" {
		if err := logger.Init(cfg.LogPath); err != nil {
			panic(err)
		}
		defer logger.Close()
	}

	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(cfg.Socket), 0o755)
	_ = os.Remove(cfg.Socket)
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)

	db, err := engine.OpenBoltDB(cfg.DBPath)
	if err != nil {
		logger.Errorf("open %s: %v", cfg.DBPath, err)
		os.Exit(1)
	}
	defer db.Close()

	l, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		logger.Errorf("listen %s: %v", cfg.Socket, err)
		os.Exit(1)
	}
	_ = os.Chmod(cfg.Socket, 0o600)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sig
		logger.Infof("received %s, shutting down", s)
		_ = l.Close()
	}()

	logger.Infof("serving %s on %s", cfg.DBPath, cfg.Socket)
	srv := engine.NewServer(func(ns string) (engine.Engine, error) {
		return db.Namespace(ns)
	})
	if err := srv.Serve(l); err != nil {
		logger.Errorf("serve: %v", err)
	}
	_ = os.Remove(cfg.Socket)
}
