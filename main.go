package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oddsflow/collector"
	"oddsflow/config"
	"oddsflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	leaguesPath := flag.String("leagues", "", "Path to a league catalog file overriding the configured leagues")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if *leaguesPath != "" {
		leagues, err := config.LoadLeagues(*leaguesPath)
		if err != nil {
			log.WithError(err).Error("Failed to load league catalog")
			os.Exit(1)
		}
		cfg.Leagues = leagues
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"leagues":  len(cfg.Leagues),
		"season":   cfg.Season,
		"timezone": cfg.Timezone,
	}).Info("starting oddsflow")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Logging.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Logging.CloudWatch.Region, cfg.Logging.CloudWatch.Namespace)
	}
	if strings.ToLower(cfg.Logging.Level) == "debug" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	col, err := collector.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialise collector")
		os.Exit(1)
	}

	summary, err := col.Run(ctx)
	if err != nil {
		log.WithError(err).Error("collection run failed")
		os.Exit(1)
	}

	// Stdout carries exactly one line: the machine-readable run summary.
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(summary); err != nil {
		log.WithError(err).Error("Failed to write run summary")
		os.Exit(1)
	}

	log.Info("oddsflow finished")
}
