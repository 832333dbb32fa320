// imesync - Keep the OS input method in step with a modal editor
//
// The editor suppresses the IME outside insert mode and restores the
// user's previous state when insert mode is entered again:
//
//	imesync status          Show the IME backend and configuration
//	imesync run             Read mode names from stdin and sync the IME
//	imesync languages       Show the language table with IME scopes
//	imesync config <action> Create, show or validate the configuration
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"imesync/internal/config"
	"imesync/internal/ime"
	"imesync/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "status":
		cmdStatus()
	case "run":
		cmdRun()
	case "languages":
		cmdLanguages()
	case "config":
		cmdConfig()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`imesync - IME synchronization for modal editing

USAGE:
    imesync <command> [options]

COMMANDS:
    status              Show the IME backend and configuration
    run                 Read editor modes from stdin and sync the IME
    languages           Show the language table with IME scopes
    config <action>     Manage configuration (init, show, validate)
    help                Show this help message

RUN INPUT:
    One command per line:
        insert | normal | select | <mode>   Switch the editor mode
        selection                           Report a selection change
        status                              Print the current stash
        quit                                Restore the IME and exit

ENVIRONMENT:
    IMESYNC_CONFIG_DIR              Configuration directory
    IMESYNC_DISABLED                Disable IME synchronization
    IMESYNC_FALLBACK_INPUT_SOURCE   macOS layout used outside insert mode
    IMESYNC_LOG_LEVEL               debug, info, warn, error
    IMESYNC_LOG_FORMAT              text, json, auto
    IMESYNC_LOG_PATH                Log file for file output`)
}

// loadConfig loads and validates the configuration at path.
func loadConfig(path string) (*config.Loader, *config.Config) {
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", loader.Path(), err)
		os.Exit(1)
	}
	return loader, cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	return logger
}

func newManager(cfg *config.Config, logger *logging.Logger) ime.Manager {
	manager, err := ime.New(cfg.IMEOptions(), logger.Logger)
	if errors.Is(err, ime.ErrUnsupportedPlatform) {
		logger.Warn("no IME adapter for this platform, synchronization disabled")
		return ime.NopManager{}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return manager
}

func closeManager(m ime.Manager) {
	if c, ok := m.(io.Closer); ok {
		c.Close()
	}
}

func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path")
	probe := fs.Bool("probe", false, "Suppress and restore the IME once to read its state")
	fs.Parse(os.Args[2:])

	loader, cfg := loadConfig(*configPath)
	logger := newLogger(cfg)
	defer logger.Close()

	manager := newManager(cfg, logger)
	defer closeManager(manager)

	fmt.Println("=== imesync Status ===")
	fmt.Println()
	fmt.Printf("Config file:    %s\n", loader.Path())
	fmt.Printf("Languages file: %s\n", config.LanguagesPath())
	fmt.Printf("Enabled:        %t\n", cfg.IME.Enabled)
	fmt.Printf("Backend:        %s\n", manager.Backend())

	if !*probe {
		return
	}
	active := manager.DisableAndGetStatus()
	manager.EnableWithStatus(ime.StatusOf(active))
	fmt.Printf("IME active:     %t\n", active)
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file path")
	noWatch := fs.Bool("no-watch", false, "Do not reload the config file on change")
	fs.Parse(os.Args[2:])

	loader, cfg := loadConfig(*configPath)
	defer loader.Close()

	logger := newLogger(cfg)
	defer logger.Close()

	manager := newManager(cfg, logger)
	defer closeManager(manager)

	if !*noWatch {
		loader.OnChange(func(next *config.Config) {
			if level, err := logging.ParseLevel(next.Logging.Level); err == nil {
				logger.SetLevel(level)
			}
			logger.Info("configuration reloaded", "level", next.Logging.Level)
			if next.IME.Enabled != cfg.IME.Enabled || next.IME.FallbackInputSource != cfg.IME.FallbackInputSource {
				logger.Warn("IME settings changed, restart imesync to apply them")
			}
		})
		if err := loader.Watch(); err != nil {
			logger.Warn("config watch unavailable", "error", err)
		} else {
			go func() {
				for err := range loader.Errors() {
					logger.Error("config reload failed", "error", err)
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("imesync running", "backend", manager.Backend())
	s := newSession(manager, os.Stdout, logger.Logger)
	if err := s.run(ctx, os.Stdin); err != nil {
		logger.Error("reading input failed", "error", err)
		os.Exit(1)
	}
}

func cmdLanguages() {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	path := fs.String("config", "", "Languages file path")
	asJSON := fs.Bool("json", false, "Output as JSON")
	fs.Parse(os.Args[2:])

	lc, err := config.UserLanguageConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(lc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCOPE\tCOMMENT TOKENS\tIME SCOPES")
	for _, lang := range lc.Languages {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			lang.Name, lang.Scope, orDash(lang.CommentTokens), orDash(lang.AutoIMEScopes))
	}
	tw.Flush()
}

func orDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, " ")
}

func cmdConfig() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: imesync config <init|show|validate> [-config path]")
		os.Exit(1)
	}

	action := os.Args[2]
	fs := flag.NewFlagSet("config "+action, flag.ExitOnError)
	path := fs.String("config", "", "Config file path")
	fs.Parse(os.Args[3:])

	switch action {
	case "init":
		cfg, created, err := config.LoadOrCreate(*path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		target := *path
		if target == "" {
			target = config.ConfigPath()
		}
		if created {
			fmt.Printf("Created %s\n", target)
		} else {
			fmt.Printf("%s already exists (version %d)\n", target, cfg.Version)
		}

	case "show":
		_, cfg := loadConfig(*path)
		data, err := config.EncodeTOML(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)

	case "validate":
		loader, _ := loadConfig(*path)
		if _, err := config.UserLanguageConfig(""); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: OK\n", loader.Path())
		fmt.Printf("%s: OK\n", config.LanguagesPath())

	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		os.Exit(1)
	}
}
