package main

import (
	"flag"
	"io"
	"log"
	"os"

	"paintbox/internal/config"
	"paintbox/internal/imagegen"
	"paintbox/internal/opener"
	"paintbox/internal/outdir"
	"paintbox/internal/paths"
	"paintbox/internal/tools"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

const version = "0.1.0"

var (
	debugMode  = flag.Bool("d", false, "Enable debug mode")
	logFile    = flag.String("log-file", "", "Log file path (default: stderr)")
	configFile = flag.String("config", "config.json", "Configuration file path")
)

func main() {
	flag.Parse()

	// stdout carries the protocol stream; diagnostics go to stderr or a
	// file, never mixed into responses.
	logger := initLogger(*debugMode, *logFile)
	logger.Info().Str("version", version).Msg("paintbox starting")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	sandbox, err := paths.NewSandbox(cfg.AllowedRoots)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build path sandbox")
	}
	logger.Debug().Strs("roots", sandbox.Roots()).Msg("allowed roots")

	var workflow *imagegen.Workflow
	if cfg.APIKey != "" {
		client := imagegen.NewOpenAIClient(cfg.APIKey, cfg.APIURL, cfg.Model)
		resolver := outdir.NewResolver(cfg.OutputDir, cfg.ForceDesktop, logger)
		workflow = imagegen.NewWorkflow(client, resolver, opener.New(logger), logger)
	} else {
		logger.Warn().Msg("no API key configured, generate_image disabled")
	}

	handler := tools.NewHandler(sandbox, workflow, cfg.ToolLimits(), logger)

	s := server.NewMCPServer("paintbox", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	handler.Register(s)

	if err := server.ServeStdio(s); err != nil {
		logger.Fatal().Err(err).Msg("server terminated")
	}
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer = os.Stderr
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
