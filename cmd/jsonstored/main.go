package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexjoedt/jsonstore"
	"github.com/alexjoedt/jsonstore/config"
	"github.com/alexjoedt/jsonstore/server"
)

var (
	cfgFile  string
	port     int
	dataDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "jsonstored",
	Short: "Keyed JSON-blob store over HTTP",
	Long: `jsonstored serves put/get/list operations against JSON files scoped
to per-key namespace directories below a storage root. Namespace
directories are provisioned out-of-band; the daemon never creates them.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: 8080)")
	rootCmd.Flags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: data)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
}

func run(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	log.SetLevel(level)

	store, err := jsonstore.New(cfg.Storage.Root,
		jsonstore.WithMaxBlobSize(cfg.Storage.MaxBlobBytes))
	if err != nil {
		return errors.Wrap(err, "creating store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A configured but unreachable Redis degrades to no caching rather than
	// refusing to start.
	var cache server.Cache = server.NoOpCache{}
	if cfg.Cache.Address != "" {
		redisCache, err := server.NewRedisCache(ctx, cfg.Cache.Address, cfg.Cache.TTLSeconds)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, continuing without cache")
		} else {
			cache = redisCache
			log.WithField("addr", cfg.Cache.Address).Info("redis cache connected")
		}
	}
	defer cache.Close()

	log.WithFields(logrus.Fields{
		"port": cfg.Server.Port,
		"root": cfg.Storage.Root,
	}).Info("jsonstored starting")

	srv := server.New(cfg, server.NewCachedStore(store, cache, log), log)
	return srv.Run(ctx)
}

// loadConfig merges the optional config file with command-line flags; flags
// win over file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, errors.Wrap(err, "loading config")
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("dir") {
		cfg.Storage.Root = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
