package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/lightnode/cmd"
	"github.com/smazurov/lightnode/internal/api"
	"github.com/smazurov/lightnode/internal/config"
	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/hal"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/smazurov/lightnode/internal/metrics"
	"github.com/smazurov/lightnode/internal/sysfs"
	"github.com/smazurov/lightnode/internal/updater"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Lights settings
	LightsBacklightPath  string `help:"Backlight brightness control file" default:"/sys/class/leds/lcd-backlight/brightness" toml:"lights.backlight_path" env:"LIGHTS_BACKLIGHT_PATH"`
	LightsRGBControlPath string `help:"RGB LED control file" default:"/sys/class/leds/rgb/control" toml:"lights.rgb_control_path" env:"LIGHTS_RGB_CONTROL_PATH"`
	LightsDriver         string `help:"Control file driver (sysfs, noop)" default:"sysfs" toml:"lights.driver" env:"LIGHTS_DRIVER"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Update settings
	UpdateEnabled    bool   `help:"Enable self-update endpoints" default:"false" toml:"update.enabled" env:"UPDATE_ENABLED"`
	UpdateRepository string `help:"GitHub repository for updates" default:"smazurov/lightnode" toml:"update.repository" env:"UPDATE_REPOSITORY"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingHAL     string `help:"HAL logging level" default:"info" toml:"logging.hal" env:"LOGGING_HAL"`
	LoggingSysfs   string `help:"Sysfs writer logging level" default:"info" toml:"logging.sysfs" env:"LOGGING_SYSFS"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingUpdater string `help:"Updater logging level" default:"info" toml:"logging.updater" env:"LOGGING_UPDATER"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"hal":     opts.LoggingHAL,
				"sysfs":   opts.LoggingSysfs,
				"api":     opts.LoggingAPI,
				"updater": opts.LoggingUpdater,
			},
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()

		// Bridge log entries onto the bus for the SSE log stream.
		logging.SetCallback(func(entry logging.Entry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		var writer sysfs.Writer
		if opts.LightsDriver == "noop" {
			logger.Info("using no-op light driver")
			writer = sysfs.NewNoop(logging.GetLogger("sysfs"))
		} else {
			writer = sysfs.New(logging.GetLogger("sysfs"), sysfs.WithBus(eventBus))
		}

		lights := hal.New(hal.Paths{
			Backlight:  opts.LightsBacklightPath,
			RGBControl: opts.LightsRGBControlPath,
		}, writer, logging.GetLogger("hal"), hal.WithBus(eventBus))

		// Watch the config file so control paths and log levels can change
		// without a restart.
		watcher := config.NewWatcher(opts.Config, func(path string) (config.LightsConfig, error) {
			return config.LoadLightsConfig(path), nil
		}, logger, config.WithDebounce[config.LightsConfig](500*time.Millisecond))

		watcher.OnReload(func(cfg config.LightsConfig) {
			lights.SetPaths(hal.Paths{
				Backlight:  cfg.BacklightPath,
				RGBControl: cfg.RGBControlPath,
			})

			loggingCfg := config.LoadLoggingConfig(opts.Config)
			logging.SetGlobalLevel(loggingCfg.Level)
			for module, level := range loggingCfg.Modules {
				logging.SetLevel(module, level)
			}

			eventBus.Publish(events.ConfigReloadedEvent{
				Path:      opts.Config,
				Timestamp: time.Now().Format(time.RFC3339),
			})
			logger.Info("configuration reloaded", "path", opts.Config)
		})

		var updateService *updater.Service
		if opts.UpdateEnabled {
			svc, err := updater.NewService(opts.UpdateRepository)
			if err != nil {
				logger.Warn("Failed to create update service", "error", err)
			} else {
				updateService = svc
			}
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			HAL:               lights,
			EventBus:          eventBus,
			PrometheusHandler: metrics.Handler(),
			Updater:           updateService,
		})

		hooks.OnStart(func() {
			if err := watcher.Start(); err != nil {
				logger.Warn("Config watcher not started", "error", err)
			}

			if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
				logger.Debug("sd_notify not available", "error", err)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if err := server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
				logger.Debug("sd_notify not available", "error", err)
			}

			watcher.Stop()
			if err := server.Stop(); err != nil {
				logger.Error("Error stopping HTTP server", "error", err)
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateSetCmd())
	cli.Root().AddCommand(cmd.CreateProbeCmd())

	cli.Run()
}
