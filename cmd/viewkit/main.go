package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-viewkit/pkg/config"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var globals globalFlags

	flagSet := pflag.NewFlagSet("viewkit", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&globals.configPath, "config", "c", "", "YAML configuration file")
	flagSet.StringVar(&globals.envFile, "env-file", ".env", "dotenv file loaded before VIEWKIT_* overrides")
	flagSet.StringVar(&globals.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return pflag.ErrHelp
	}

	logger := newLogger(stderr, globals.logLevel)
	cfg, err := loadConfig(globals, logger)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "render":
		return runRender(ctx, cfg, logger, rest[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, cfg, logger, rest[1:], stderr)
	case "init":
		return runInit(logger, rest[1:], stderr)
	case "help":
		printHelp(stderr, flagSet)
		return nil
	default:
		return fmt.Errorf("unknown command %q (want render, serve or init)", rest[0])
	}
}

func loadConfig(globals globalFlags, logger *slog.Logger) (config.Config, error) {
	if globals.envFile != "" {
		if err := godotenv.Load(globals.envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return config.Config{}, fmt.Errorf("load %s: %w", globals.envFile, err)
			}
			logger.Debug("no dotenv file", "path", globals.envFile)
		}
	}

	cfg := config.Default()
	if globals.configPath != "" {
		loaded, err := config.Load(globals.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `viewkit renders pongo2 views with layouts, partials and async helpers.

Usage:
  viewkit [global flags] render [flags] [view]
  viewkit [global flags] serve [flags]
  viewkit [global flags] init [--force] [dir]

Examples:
  # Write the starter layout, index view and partials into ./views
  viewkit init

  # Render a view with locals from a YAML file
  viewkit render --locals data.yaml views/index.html

  # Pick a view and enter locals interactively
  viewkit render -i

  # Serve every view under ./views on :8080
  viewkit serve --addr :8080

Global flags:
%s`, flagSet.FlagUsages())
}
