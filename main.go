package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/klinkhq/keyled/cmd"
	"github.com/klinkhq/keyled/internal/api"
	"github.com/klinkhq/keyled/internal/config"
	"github.com/klinkhq/keyled/internal/events"
	"github.com/klinkhq/keyled/internal/hid"
	"github.com/klinkhq/keyled/internal/indicator"
	"github.com/klinkhq/keyled/internal/led"
	"github.com/klinkhq/keyled/internal/logging"
	"github.com/klinkhq/keyled/internal/metrics"
	"github.com/klinkhq/keyled/internal/profiles"
	"github.com/klinkhq/keyled/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"/etc/keyled/config.toml"`

	// Server settings
	Port string `help:"Address to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// LED settings
	RedLED   string `help:"sysfs LED name for the red channel (auto-discovered when empty)" toml:"leds.red" env:"LEDS_RED"`
	GreenLED string `help:"sysfs LED name for the green channel" toml:"leds.green" env:"LEDS_GREEN"`
	BlueLED  string `help:"sysfs LED name for the blue channel" toml:"leds.blue" env:"LEDS_BLUE"`

	// Keyboard HID settings
	HIDVendorID  int `help:"USB vendor ID of the keyboard, 0 matches any" toml:"hid.vendor_id" env:"HID_VENDOR_ID"`
	HIDProductID int `help:"USB product ID of the keyboard, 0 matches any" toml:"hid.product_id" env:"HID_PRODUCT_ID"`
	HIDUsagePage int `help:"HID usage page of the status interface" default:"65376" toml:"hid.usage_page" env:"HID_USAGE_PAGE"`

	// Bluetooth profile settings
	ProfileSlots  []string `help:"Bluetooth MAC addresses for profile slots 0-3" toml:"profiles.slots" env:"PROFILE_SLOTS"`
	ActiveProfile int      `help:"Profile slot active at startup" default:"0" toml:"profiles.active" env:"PROFILES_ACTIVE"`

	// Battery settings
	BatteryAlerts     bool `help:"Enable the low battery warning pattern" default:"true" toml:"battery.alerts" env:"BATTERY_ALERTS"`
	BatteryLowPercent int  `help:"Battery percentage that triggers the warning pattern" default:"10" toml:"battery.low_percent" env:"BATTERY_LOW_PERCENT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingIndicator string `help:"Indicator logging level" default:"info" toml:"logging.indicator" env:"LOGGING_INDICATOR"`
	LoggingLED       string `help:"LED driver logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingHID       string `help:"HID reader logging level" default:"info" toml:"logging.hid" env:"LOGGING_HID"`
	LoggingProfiles  string `help:"Profile tracker logging level" default:"info" toml:"logging.profiles" env:"LOGGING_PROFILES"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// reloadOptions reloads the config file over a copy of the resolved
// startup options, so values that came from flags, env or defaults survive
// a file that omits them.
func reloadOptions(base Options, path string) (*Options, error) {
	fresh := base
	fresh.Config = path
	if err := config.LoadConfig(&fresh, nil); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func slotsArray(slots []string) [profiles.MaxSlots]string {
	var out [profiles.MaxSlots]string
	for i, slot := range slots {
		if i >= profiles.MaxSlots {
			break
		}
		out[i] = slot
	}
	return out
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"indicator": opts.LoggingIndicator,
				"led":       opts.LoggingLED,
				"hid":       opts.LoggingHID,
				"profiles":  opts.LoggingProfiles,
				"api":       opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		metricSet := metrics.New()

		// Event bus for in-process event handling
		eventBus := events.New()
		unobserve := metricSet.ObserveBus(eventBus)

		// LED output path
		controller := led.New(
			[led.NumChannels]string{opts.RedLED, opts.GreenLED, opts.BlueLED},
			logging.GetLogger("led"),
		)
		driver := led.NewDriver(controller, logging.GetLogger("led"))

		// Bluetooth profile slots
		tracker := profiles.New(
			slotsArray(opts.ProfileSlots),
			uint8(opts.ActiveProfile),
			eventBus,
			logging.GetLogger("profiles"),
		)

		// Indicator state and pattern scheduler
		manager := indicator.NewManager(&indicator.Options{
			Sink:                metricSet.InstrumentSink(driver),
			Profiles:            tracker,
			EventBus:            eventBus,
			Logger:              logging.GetLogger("indicator"),
			BatteryAlerts:       opts.BatteryAlerts,
			LowBatteryThreshold: uint8(opts.BatteryLowPercent),
		})
		metricSet.RegisterStateGauges(manager.State)

		// Keyboard HID event source
		reader := hid.NewReader(&hid.Options{
			VendorID:  uint16(opts.HIDVendorID),
			ProductID: uint16(opts.HIDProductID),
			UsagePage: uint16(opts.HIDUsagePage),
			EventBus:  eventBus,
			Logger:    logging.GetLogger("hid"),
		})

		server := api.NewServer(&api.Options{
			AuthUsername:   opts.AuthUsername,
			AuthPassword:   opts.AuthPassword,
			Indicator:      manager,
			Controller:     controller,
			Driver:         driver,
			MetricsHandler: metricSet.Handler(),
		})

		// Live reload for profile slots and battery threshold
		startup := *opts
		watcher := config.NewConfigWatcher(
			opts.Config,
			func(path string) (*Options, error) {
				return reloadOptions(startup, path)
			},
			logger,
		)
		watcher.OnReload(func(fresh *Options) {
			logger.Info("Configuration reloaded")
			tracker.UpdateSlots(slotsArray(fresh.ProfileSlots))
			if fresh.BatteryLowPercent > 0 {
				manager.SetLowBatteryThreshold(uint8(fresh.BatteryLowPercent))
			}
		})

		notifier := systemd.NewNotifier(logger)

		hooks.OnStart(func() {
			if startErr := tracker.Start(); startErr != nil {
				logger.Warn("Bluetooth profile tracking unavailable", "error", startErr)
			}

			manager.Start()

			if startErr := reader.Start(); startErr != nil {
				logger.Warn("Keyboard HID reader unavailable", "error", startErr)
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config file watching unavailable", "error", watchErr)
			}

			notifier.Ready()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}

			reader.Stop()
			manager.Stop()
			tracker.Stop()
			unobserve()
		})
	})

	cli.Root().AddCommand(cmd.CreateLEDsCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
