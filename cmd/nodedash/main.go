package main

import (
	_ "embed"
	"flag"
	"os"
	"strings"

	"nodedash/pkg/classify"
	"nodedash/pkg/config"
	"nodedash/pkg/log"
	"nodedash/pkg/runtime"
	"nodedash/pkg/server"
	"nodedash/pkg/status"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	configPath := flag.String("config", "", "Path to YAML configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	debugAddr := flag.String("debug-addr", "", "pprof listen address, empty disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
	}

	if err := log.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}
	if *debug {
		log.SetDebugMode()
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	invoker := runtime.New(runtime.CommandExecutor{}, runtime.Options{
		Binary:         cfg.Runtime.Binary,
		Elevation:      runtime.Elevation(cfg.Runtime.Elevation),
		CommandTimeout: cfg.Runtime.CommandTimeout,
		ProbeBaseURL:   cfg.Probe.BaseURL,
		ReadinessPath:  cfg.Probe.ReadinessPath,
		LivenessPath:   cfg.Probe.LivenessPath,
		ProbeTimeout:   cfg.Probe.Timeout,
	})

	service := status.NewService(invoker, nil, status.Options{
		Limits: status.Limits{
			DefaultContainer: cfg.Logs.DefaultContainer,
			DefaultSince:     cfg.Logs.DefaultSince,
			MaxSince:         cfg.Logs.MaxSince,
			DefaultTail:      cfg.Logs.DefaultTail,
			MaxTail:          cfg.Logs.MaxTail,
		},
		Policy: classify.Policy{
			Freshness: cfg.Classifier.Freshness,
			ClockSkew: cfg.Classifier.ClockSkew,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := server.New(service, server.Options{
		Version:         strings.TrimSpace(Version),
		RefreshInterval: cfg.Server.RefreshInterval,
		RateLimit:       cfg.Server.RateLimit,
		Location:        cfg.Location(),
		DebugAddr:       *debugAddr,
	})

	log.Info().
		Str("runtime", cfg.Runtime.Binary).
		Bool("elevated", invoker.Elevated()).
		Str("default_container", cfg.Logs.DefaultContainer).
		Msg("Container runtime ready")

	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
