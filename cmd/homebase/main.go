// Homebase is a small home-inventory service.
//
// It keeps users, houses, rooms and devices as keyed JSON documents,
// serves them over a REST API, and streams every committed change over
// WebSocket and, optionally, MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/homebase/internal/api"
	"github.com/nerrad567/homebase/internal/audit"
	"github.com/nerrad567/homebase/internal/events"
	"github.com/nerrad567/homebase/internal/home"
	"github.com/nerrad567/homebase/internal/infrastructure/config"
	"github.com/nerrad567/homebase/internal/infrastructure/database"
	"github.com/nerrad567/homebase/internal/infrastructure/influxdb"
	"github.com/nerrad567/homebase/internal/infrastructure/logging"
	"github.com/nerrad567/homebase/internal/infrastructure/mqtt"
	"github.com/nerrad567/homebase/internal/infrastructure/objectstore"
	"github.com/nerrad567/homebase/internal/store"
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

// storage is the opened persistence backend plus its lifecycle hooks.
type storage struct {
	backend store.Backend
	health  api.HealthChecker
	db      *database.DB
	close   func() error
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Homebase",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version).With("site", cfg.Site.ID)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() {
		log.Info("closing storage")
		if closeErr := st.close(); closeErr != nil {
			log.Error("error closing storage", "error", closeErr)
		}
	}()
	log.Info("storage opened", "backend", cfg.Storage.Backend)

	registry := home.NewRegistry(st.backend)
	registry.SetLogger(log)

	counts, err := registry.Counts(ctx)
	if err != nil {
		return fmt.Errorf("reading collections: %w", err)
	}
	log.Info("registry initialised",
		"users", counts[home.CollectionUsers],
		"houses", counts[home.CollectionHouses],
		"rooms", counts[home.CollectionRooms],
		"devices", counts[home.CollectionDevices],
	)

	checks := map[string]api.HealthChecker{"storage": st.health}
	hub := api.NewHub(cfg.WebSocket, log)
	observers := events.Fanout{hub}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"topic_prefix", mqttClient.Topics().Prefix(),
			"change_filter", mqttClient.Topics().AllChanges(),
		)
		observers = append(observers, events.NewMQTTPublisher(mqttClient, log))
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
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
		registry.SetRecorder(influxClient)
		checks["influxdb"] = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	var journal *audit.Journal
	if st.db != nil {
		journal, err = audit.NewJournal(ctx, st.db.DB, log)
		if err != nil {
			return fmt.Errorf("opening change journal: %w", err)
		}
		// Deferred before server.Close, so it runs after in-flight requests
		// finish and before storage closes.
		defer startJournal(journal)()
		observers = append(observers, journal)
		log.Info("change journal enabled")
	}

	registry.SetObserver(observers)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Registry: registry,
		Hub:      hub,
		MQTT:     mqttClient,
		DB:       st.db,
		Journal:  journal,
		Checks:   checks,
		Version:  version,
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

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// startJournal runs the journal writer on its own context. The returned stop
// function cancels it and waits until every queued change is written.
func startJournal(journal *audit.Journal) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		journal.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// openStorage opens the backend selected by storage.backend.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := database.Open(database.Config{
			Path:        cfg.Storage.SQLite.Path,
			WALMode:     cfg.Storage.SQLite.WALMode,
			BusyTimeout: cfg.Storage.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		return &storage{backend: db, health: db, db: db, close: db.Close}, nil

	case config.BackendS3:
		b, err := objectstore.Open(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		return &storage{backend: b, health: b, close: noClose}, nil

	default:
		b, err := store.NewFileBackend(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		return &storage{backend: b, health: b, close: noClose}, nil
	}
}

func noClose() error { return nil }

// getConfigPath returns the configuration file path.
// Checks HOMEBASE_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("HOMEBASE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
