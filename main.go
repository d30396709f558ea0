package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/stripd/cmd"
	"github.com/smazurov/stripd/internal/api"
	"github.com/smazurov/stripd/internal/config"
	"github.com/smazurov/stripd/internal/discovery"
	"github.com/smazurov/stripd/internal/events"
	"github.com/smazurov/stripd/internal/led"
	"github.com/smazurov/stripd/internal/light"
	"github.com/smazurov/stripd/internal/logging"
	"github.com/smazurov/stripd/internal/metrics"
	"github.com/smazurov/stripd/internal/metrics/exporters"
	"github.com/smazurov/stripd/internal/pwm"
	"github.com/smazurov/stripd/internal/store"
	"github.com/smazurov/stripd/internal/systemd"
	"github.com/smazurov/stripd/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port              string `help:"Address to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`
	ServerRecvTimeout string `help:"Deadline for reading a control request body" default:"5s" toml:"server.recv_timeout" env:"SERVER_RECV_TIMEOUT"`

	// Persistence settings
	StoreDriver    string `help:"Store engine (sqlite, toml, memory)" default:"sqlite" toml:"store.driver" env:"STORE_DRIVER"`
	StorePath      string `help:"Store file path (default stripd.db for sqlite, state.toml for toml)" toml:"store.path" env:"STORE_PATH"`
	StoreNamespace string `help:"Store namespace holding the snapshot" default:"ledstrip" toml:"store.namespace" env:"STORE_NAMESPACE"`

	// PWM settings
	PWMDriver     string `help:"PWM backend (auto, sysfs, serial, noop)" default:"auto" toml:"pwm.driver" env:"PWM_DRIVER"`
	PWMFrequency  int    `help:"PWM frequency in Hz" default:"1000" toml:"pwm.frequency_hz" env:"PWM_FREQUENCY"`
	PWMSysfsRoot  string `help:"Sysfs PWM class directory" default:"/sys/class/pwm" toml:"pwm.sysfs_root" env:"PWM_SYSFS_ROOT"`
	PWMChip       int    `help:"PWM chip number" default:"0" toml:"pwm.chip" env:"PWM_CHIP"`
	PWMChannels   string `help:"PWM channels for R,G,B,W" default:"0,1,2,3" toml:"pwm.channels" env:"PWM_CHANNELS"`
	PWMInvert     bool   `help:"Drive outputs active-low" default:"true" toml:"pwm.invert" env:"PWM_INVERT"`
	PWMSerialPort string `help:"Serial port of the PWM controller board" toml:"pwm.serial_port" env:"PWM_SERIAL_PORT"`
	PWMBaudRate   int    `help:"Serial baud rate" default:"115200" toml:"pwm.baud_rate" env:"PWM_BAUD_RATE"`

	// Light defaults used when nothing is persisted
	LightDefaultColor string `help:"Boot colour r,g,b,w" default:"255,255,255,240" toml:"light.default_color" env:"LIGHT_DEFAULT_COLOR"`
	LightDefaultLevel int    `help:"Boot level 0..255" default:"0" toml:"light.default_level" env:"LIGHT_DEFAULT_LEVEL"`

	// Features
	DiscoveryMDNS  bool   `help:"Advertise over mDNS" default:"false" toml:"discovery.mdns" env:"DISCOVERY_MDNS"`
	DiscoveryName  string `help:"mDNS instance name (default hostname)" toml:"discovery.name" env:"DISCOVERY_NAME"`
	MetricsEnabled bool   `help:"Serve Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`
	LEDStatus      bool   `help:"Show persistence health on the board status LED" default:"false" toml:"led.enabled" env:"LED_ENABLED"`
	LEDName        string `help:"Status LED name under /sys/class/leds (default board detection)" toml:"led.name" env:"LED_NAME"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLight  string `help:"Light controller logging level" toml:"logging.light" env:"LOGGING_LIGHT"`
	LoggingStore  string `help:"Store logging level" toml:"logging.store" env:"LOGGING_STORE"`
	LoggingPWM    string `help:"PWM logging level" toml:"logging.pwm" env:"LOGGING_PWM"`
	LoggingAPI    string `help:"API logging level" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP   string `help:"HTTP request logging level" toml:"logging.http" env:"LOGGING_HTTP"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"light": opts.LoggingLight,
				"store": opts.LoggingStore,
				"pwm":   opts.LoggingPWM,
				"api":   opts.LoggingAPI,
				"http":  opts.LoggingHTTP,
			},
		})
		logger := logging.GetLogger("main")

		var d *daemon
		hooks.OnStart(func() {
			var err error
			d, err = startDaemon(opts, logger)
			if err != nil {
				logger.Error("Failed to start", "error", err)
				os.Exit(1)
			}
			d.wait()
		})

		hooks.OnStop(func() {
			if d != nil {
				d.stop()
			}
		})
	})

	cli.Root().Version = version.String()
	cli.Root().AddCommand(cmd.CreateSnapshotCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())
	cli.Root().AddCommand(cmd.CreateDiscoverCmd())

	cli.Run()
}

// daemon is everything the serve command starts, in start order.
type daemon struct {
	logger *slog.Logger
	cancel context.CancelFunc

	engine     store.Engine
	driver     pwm.Driver
	recorder   *metrics.Recorder
	ledManager *led.Manager
	server     *api.Server
	watcher    *config.Watcher[logging.Config]
	advertiser *discovery.Advertiser
	status     *systemd.PersistenceStatus

	serveErr chan error
	fault    chan error
	exit     func(code int)
	stopOnce sync.Once
}

func startDaemon(opts *Options, logger *slog.Logger) (*daemon, error) {
	recvTimeout, err := time.ParseDuration(opts.ServerRecvTimeout)
	if err != nil || recvTimeout <= 0 {
		logger.Warn("Invalid receive timeout, using default", "value", opts.ServerRecvTimeout)
		recvTimeout = api.DefaultRecvTimeout
	}

	pwmConfig, err := opts.pwmConfig()
	if err != nil {
		return nil, err
	}
	defaults, err := opts.lightDefaults()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &daemon{
		logger:   logger,
		cancel:   cancel,
		serveErr: make(chan error, 1),
		fault:    make(chan error, 1),
		exit:     os.Exit,
	}

	eventBus := events.New()
	logging.SetLogCallback(func(entry logging.LogEntry) {
		eventBus.Publish(api.ToLogEvent(entry))
	})

	d.engine, err = store.NewEngine(opts.StoreDriver, opts.StorePath)
	if err != nil {
		return nil, errors.Join(err, d.close())
	}
	snapshots := store.NewSnapshots(d.engine, opts.StoreNamespace, logging.GetLogger("store"))

	d.driver, err = pwm.New(pwmConfig, logging.GetLogger("pwm"))
	if err != nil {
		return nil, errors.Join(err, d.close())
	}

	// Metrics and the status LED subscribe before the controller publishes
	// its boot state.
	if opts.MetricsEnabled {
		d.recorder = metrics.NewRecorder(eventBus)
		d.recorder.Start()
	}

	ledName := opts.LEDName
	if !opts.LEDStatus {
		ledName = "none"
	}
	ledLogger := logging.GetLogger("led")
	ledController := led.New(ledName, ledLogger)
	d.ledManager = led.NewManager(ledController, eventBus, ledLogger)
	d.ledManager.Start()

	controller, err := light.NewController(d.driver, snapshots,
		light.WithLogger(logging.GetLogger("light")),
		light.WithEventBus(eventBus),
		light.WithDefaults(defaults),
		light.WithFaultHandler(d.onFault),
	)
	if err != nil {
		return nil, errors.Join(err, d.close())
	}

	apiOpts := &api.Options{
		Light:       controller,
		EventBus:    eventBus,
		RecvTimeout: recvTimeout,
		Degraded:    d.ledManager.Degraded,
	}
	if opts.MetricsEnabled {
		apiOpts.PrometheusHandler = exporters.HTTPHandler()
	}
	if opts.LEDStatus {
		apiOpts.LEDController = ledController
	}
	d.server = api.NewServer(apiOpts)

	ln, err := net.Listen("tcp", opts.Port)
	if err != nil {
		return nil, errors.Join(err, d.close())
	}
	go func() {
		d.serveErr <- d.server.Serve(ln)
	}()

	systemd.Ready(logger)
	d.status = systemd.ReportPersistence(eventBus, logger)
	go systemd.Watchdog(ctx, logger)

	// Logging levels follow config.toml edits without a restart.
	d.watcher = config.NewConfigWatcher(opts.Config, config.LoadLoggingConfig, logger,
		config.WithErrorHandler[logging.Config](func(watchErr error) {
			logger.Warn("Keeping previous logging levels", "error", watchErr)
		}),
	)
	d.watcher.OnReload(func(cfg logging.Config) {
		logging.SetLevels(cfg)
		logger.Info("Logging levels reloaded", "level", cfg.Level)
	})
	if watchErr := d.watcher.Start(); watchErr != nil {
		logger.Warn("Config watcher disabled", "error", watchErr)
	}

	if opts.DiscoveryMDNS {
		port := 0
		if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
			port = tcp.Port
		}
		d.advertiser, err = discovery.Advertise(discovery.Config{
			Instance: opts.DiscoveryName,
			Port:     port,
			Version:  version.String(),
		}, logging.GetLogger("discovery"))
		if err != nil {
			logger.Warn("mDNS advertisement disabled", "error", err)
		}
	}

	return d, nil
}

// onFault runs inside the failing request. It only hands the error to wait,
// so the client still gets its 500 before the server shuts down.
func (d *daemon) onFault(err error) {
	select {
	case d.fault <- err:
	default:
	}
}

// wait blocks until the HTTP server stops. A hardware fault shuts the server
// down gracefully and exits non-zero so systemd restarts the unit.
func (d *daemon) wait() {
	select {
	case err := <-d.serveErr:
		if err != nil {
			d.logger.Error("HTTP server failed", "error", err)
			d.exit(1)
		}
	case err := <-d.fault:
		d.logger.Error("PWM hardware fault, exiting", "error", err)
		d.stop()
		d.exit(1)
	}
}

func (d *daemon) stop() {
	d.stopOnce.Do(d.shutdown)
}

func (d *daemon) shutdown() {
	d.logger.Info("Shutting down")
	systemd.Stopping(d.logger)

	if d.advertiser != nil {
		if err := d.advertiser.Shutdown(); err != nil {
			d.logger.Warn("Error stopping mDNS responder", "error", err)
		}
	}
	if d.status != nil {
		d.status.Stop()
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("Error stopping config watcher", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		d.logger.Error("Error stopping HTTP server", "error", err)
	}

	if err := d.close(); err != nil {
		d.logger.Error("Error releasing hardware", "error", err)
	}
}

// close releases whatever startDaemon acquired so far.
func (d *daemon) close() error {
	d.cancel()
	if d.ledManager != nil {
		d.ledManager.Stop()
	}
	if d.recorder != nil {
		d.recorder.Stop()
	}

	var errs []error
	if d.driver != nil {
		errs = append(errs, d.driver.Close())
	}
	if d.engine != nil {
		errs = append(errs, d.engine.Close())
	}
	return errors.Join(errs...)
}
