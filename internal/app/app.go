package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/andy/kihopunch/internal/config"
	"github.com/andy/kihopunch/internal/keyring"
	"github.com/andy/kihopunch/internal/kiho"
	"github.com/andy/kihopunch/internal/logging"
	"github.com/andy/kihopunch/internal/service"
	"github.com/charmbracelet/log"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=..."
var Version = "0.1.0"

var ErrMissingAPIKey = errors.New("no API key: run 'kihopunch config set-key', set " + keyring.EnvAPIKey + " or put api.key in the config file")

// UserAgent identifies the client to the punch API
func UserAgent() string {
	return fmt.Sprintf("%s v%s", config.AppName, Version)
}

// Options are the process wide settings parsed from the command line
type Options struct {
	ConfigPath string
	DryRun     bool
	Verbose    int

	// LogOutput defaults to stderr
	LogOutput io.Writer

	// Keyring defaults to the system keyring
	Keyring keyring.Keyring

	// HTTPClient defaults to a client with the configured timeout
	HTTPClient *http.Client
}

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	Options    Options
	Logger     *log.Logger
	Keyring    keyring.Keyring

	PunchService service.PunchService

	apiKeyErr error
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading (or creating) the config file
// 2. Resolving the API key from env, config or keyring
// 3. Creating the punch API client and service
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigPath()
	}
	logger := newLogger(opts)

	logger.Debug("loading configuration", "path", opts.ConfigPath)
	cfg, created, err := config.LoadOrCreate(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if created {
		logger.Info("created default configuration", "path", opts.ConfigPath)
	}

	return NewWithConfig(ctx, cfg, opts)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(opts)

	keys := opts.Keyring
	if keys == nil {
		keys = keyring.NewKeyring()
	}

	configKey := ""
	if cfg.API.HasKey() {
		configKey = cfg.API.Key
	}
	apiKey, keyErr := keyring.ResolveAPIKey(keys, configKey)
	var apiKeyErr error
	if keyErr != nil {
		apiKeyErr = ErrMissingAPIKey
		if !errors.Is(keyErr, keyring.ErrKeyNotFound) {
			apiKeyErr = fmt.Errorf("%w (%v)", ErrMissingAPIKey, keyErr)
		}
		logger.Debug("API key not available", "err", keyErr)
	}

	client := kiho.NewClient(kiho.ClientConfig{
		Client:    opts.HTTPClient,
		URL:       cfg.API.URL,
		APIKey:    apiKey,
		UserAgent: UserAgent(),
		Timeout:   cfg.API.Timeout(),
		Logger:    logger,
		DumpHTTP:  opts.Verbose > 1,
	})

	resolver := service.NewCostCentreResolver(cfg.CostCentreRules, cfg.DefaultCostCentre)
	punchService := service.NewPunchService(client, resolver, service.Options{
		DryRun: opts.DryRun,
		Logger: logger,
	})

	logger.Debug("application initialized",
		"api_url", cfg.API.URL,
		"user_agent", UserAgent(),
		"config_path", opts.ConfigPath,
		"dry_run", opts.DryRun,
		"verbosity", opts.Verbose,
	)

	return &App{
		Config:       cfg,
		ConfigPath:   opts.ConfigPath,
		Options:      opts,
		Logger:       logger,
		Keyring:      keys,
		PunchService: punchService,
		apiKeyErr:    apiKeyErr,
	}, nil
}

// RequireAPIKey returns an error when no API key could be resolved. Dry runs
// never touch the network, so they only get a warning.
func (a *App) RequireAPIKey() error {
	if a.apiKeyErr == nil {
		return nil
	}
	if a.Options.DryRun {
		a.Logger.Warn("no API key configured, continuing because of dry run")
		return nil
	}
	return a.apiKeyErr
}

func newLogger(opts Options) *log.Logger {
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return logging.New(out, opts.Verbose)
}
