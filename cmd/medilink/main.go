// MediLink: terminal client for the shelter medication inventory system.
//
// Patients review their profile, medication plan, and emergency QR code;
// shelter administrators monitor and correct stock across shelters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/session"
	"github.com/medilink/medilink/internal/tui"
	"github.com/medilink/medilink/internal/tui/views/medical"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version and exit")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
		medicalData = flag.String("medical-data", "", "URL-encoded medical QR payload to view")
		printOnly   = flag.Bool("print", false, "With -medical-data, print as plain text and exit")
		doLogout    = flag.Bool("logout", false, "Clear the stored session and exit")
	)
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("MediLink version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Plain-text QR viewing needs no config, session, or server
	if *medicalData != "" && *printOnly {
		info, err := medical.ParsePayload(*medicalData)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Print(medical.RenderText(info))
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	// Run the application
	if err := run(ctx, *configPath, *medicalData, *debugMode, *doLogout); err != nil {
		slog.Error("application error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, medicalData string, debugMode, doLogout bool) error {
	// Load configuration
	cfg, cfgPath, err := config.Load(configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			logLevel = slog.LevelDebug
		case config.LogLevelWarn:
			logLevel = slog.LevelWarn
		case config.LogLevelError:
			logLevel = slog.LevelError
		}
	}

	// Log to file when configured; stderr is the TUI's terminal
	var logHandler slog.Handler
	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()

		logHandler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	slog.Info("MediLink starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	// Open the session store
	sessPath, err := config.EnsureSessionPath(cfg)
	if err != nil {
		return fmt.Errorf("ensuring session path: %w", err)
	}
	cfg.Session.Path = sessPath

	sess, err := session.Open(sessPath)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Error("error closing session store", "error", err)
		}
	}()

	if doLogout {
		sess.Clear()
		fmt.Println("Session cleared.")
		return nil
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout(), sess)

	// Set version info for TUI
	tui.Version = Version
	tui.BuildTime = BuildTime

	slog.Info("starting TUI",
		"base_url", cfg.API.BaseURL,
		"authenticated", sess.IsAuthenticated(),
	)

	if err := tui.Run(ctx, client, cfg, medicalData); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("MediLink shutdown complete")
	return nil
}
