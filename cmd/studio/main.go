// System Builder Studio - IoT system simulation server
//
// This is the main entry point for the studio. It hosts the simulated world
// (canvas, wiring, mock server and database), runs the simulation clock and
// serves the HTTP/WebSocket API used by the browser front end.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hangsome/system-builder-studio/internal/api"
	"github.com/hangsome/system-builder-studio/internal/catalog"
	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/config"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/database"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/influxdb"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/logging"
	"github.com/hangsome/system-builder-studio/internal/infrastructure/mqtt"
	"github.com/hangsome/system-builder-studio/internal/observability"
	"github.com/hangsome/system-builder-studio/internal/sensor"
	"github.com/hangsome/system-builder-studio/internal/simulation"
	"github.com/hangsome/system-builder-studio/internal/world"
	"github.com/hangsome/system-builder-studio/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting System Builder Studio",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Services probed by /health, filled in as each one is enabled.
	services := make(map[string]api.HealthChecker)

	// Saved layouts (optional)
	var (
		layouts world.Repository
		schema  api.SchemaReporter
	)
	if cfg.Database.Enabled {
		dbCfg := database.ConfigFrom(cfg.Database)
		dbCfg.Migrations = migrations.FS
		db, openErr := database.Open(ctx, dbCfg)
		if openErr != nil {
			return fmt.Errorf("opening database: %w", openErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		layouts = world.NewSQLiteRepository(db.Sqlx())
		schema = db
		services["database"] = db

		status, statusErr := db.SchemaStatus(ctx)
		if statusErr != nil {
			return fmt.Errorf("reading schema status: %w", statusErr)
		}
		log.Info("database ready", "path", cfg.Database.Path, "schema_version", status.Version)
	} else {
		log.Info("database disabled, layouts will not be saved")
	}

	store, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	store.SetLogger(log)
	log.Info("world initialised",
		"definitions", store.Analyzer().Catalog().Len(),
		"components", len(store.Snapshot().Components),
	)

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // noise seed, sign irrelevant
	}
	scheduler := simulation.New(store, sensor.NewFluctuator(seed), simulation.RealClock{})
	scheduler.SetLogger(log)

	collector, err := observability.NewSimulationCollector(prometheus.NewRegistry(), store)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	scheduler.AddObserver(collector)

	hub := api.NewHub(cfg.WebSocket, log)
	scheduler.AddObserver(hub)
	logSinks := []func(world.LogEntry){collector.ObserveLog, hub.PublishLog}

	// MQTT telemetry and control (optional)
	var (
		mqttClient *mqtt.Client
		broker     api.BrokerReporter
	)
	if cfg.MQTT.Enabled {
		client, telemetry, mqttErr := startMQTT(cfg.MQTT, scheduler, log)
		if mqttErr != nil {
			return mqttErr
		}
		mqttClient = client
		defer func() {
			telemetry.Close()
			log.Info("disconnecting from MQTT", "dropped_messages", telemetry.Dropped())
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		scheduler.AddObserver(telemetry)
		logSinks = append(logSinks, telemetry.PublishLog)
		broker = client
		services["mqtt"] = client
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB time series (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		scheduler.AddObserver(influxdb.NewRecorder(influxClient))
		services["influxdb"] = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	store.SetLogHook(fanOut(logSinks...))

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Store:     store,
		Scheduler: scheduler,
		Layouts:   layouts,
		Metrics:   collector,
		Services:  services,
		Schema:    schema,
		Broker:    broker,
		Hub:       hub,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Control messages stop first, then the simulation, then the sinks it
	// reports to (deferred closes).
	if mqttClient != nil {
		if err := mqttClient.Unsubscribe(mqttClient.Topics().AllControl()); err != nil {
			log.Warn("dropping MQTT control subscription", "error", err)
		}
	}
	scheduler.Stop()

	log.Info("System Builder Studio stopped")
	return nil
}

// buildWorld creates the catalogue and world store and loads the configured
// startup layout, if any.
func buildWorld(cfg *config.Config) (*world.Store, error) {
	cat := catalog.Builtin()
	if cfg.Catalog.File != "" {
		var err error
		if cat, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
			return nil, fmt.Errorf("loading catalogue: %w", err)
		}
	}

	store := world.NewStore(circuit.New(cat))
	if err := store.SetSpeed(cfg.Simulation.Speed); err != nil {
		return nil, fmt.Errorf("applying simulation speed: %w", err)
	}
	store.SetAutoFluctuation(cfg.Simulation.AutoFluctuation)

	switch {
	case cfg.Simulation.ScenarioFile != "":
		l, err := world.LoadScenarioFile(cfg.Simulation.ScenarioFile)
		if err != nil {
			return nil, fmt.Errorf("loading scenario file: %w", err)
		}
		if err := store.ApplyLayout(l); err != nil {
			return nil, fmt.Errorf("applying scenario file: %w", err)
		}
	case cfg.Simulation.Scenario != "":
		if err := store.LoadScenario(cfg.Simulation.Scenario); err != nil {
			return nil, fmt.Errorf("loading scenario %q: %w", cfg.Simulation.Scenario, err)
		}
	}
	return store, nil
}

// startMQTT connects to the broker, starts the telemetry publisher and
// subscribes to control topics.
func startMQTT(cfg config.MQTTConfig, ctrl mqtt.Controller, log *logging.Logger) (*mqtt.Client, *mqtt.Telemetry, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	telemetry := mqtt.NewTelemetry(client, client.Topics(), client.QoS())
	telemetry.SetLogger(log)

	if err := client.Subscribe(client.Topics().AllControl(), client.QoS(), mqtt.ControlHandler(ctrl)); err != nil {
		telemetry.Close()
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, nil, fmt.Errorf("subscribing to control topics: %w", err)
	}

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"prefix", client.Topics().Prefix,
	)
	return client, telemetry, nil
}

// fanOut combines log sinks into a single store log hook.
func fanOut(sinks ...func(world.LogEntry)) func(world.LogEntry) {
	return func(e world.LogEntry) {
		for _, sink := range sinks {
			sink(e)
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses STUDIO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("STUDIO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
