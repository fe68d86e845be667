// jobtrack - job application tracker
//
// This is the main entry point for the jobtrack service: a REST API where
// authenticated users manage their own job applications and administrators
// manage all of them. Authentication is stateless (signed bearer tokens);
// every read, update, delete and listing is checked against the caller's
// ownership before any data is returned.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/jobtrack-core/internal/api"
	"github.com/nerrad567/jobtrack-core/internal/audit"
	"github.com/nerrad567/jobtrack-core/internal/auth"
	"github.com/nerrad567/jobtrack-core/internal/events"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/config"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/database"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/logging"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/jobtrack-core/internal/jobs"
	"github.com/nerrad567/jobtrack-core/migrations"
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

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting jobtrack",
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

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Optional infrastructure. Both clients are nil when disabled; their
	// methods are nil-safe.
	mqttClient, err := connectMQTT(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if mqttClient == nil {
			return
		}
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	influxClient, err := connectInfluxDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if influxClient == nil {
			return
		}
		log.Info("closing InfluxDB connection")
		if closeErr := influxClient.Close(); closeErr != nil {
			log.Error("error closing InfluxDB", "error", closeErr)
		}
	}()

	srv, err := buildServer(ctx, cfg, log, db, mqttClient, influxClient)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("jobtrack stopped")
	return nil
}

// buildServer wires the authentication core, the jobs service and the
// audit trail into an API server.
func buildServer(ctx context.Context, cfg *config.Config, log *logging.Logger, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) (*api.Server, error) {
	key, err := cfg.Security.JWT.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("reading signing key: %w", err)
	}
	tokens, err := auth.NewTokenService(key, cfg.Security.JWT.TokenLifetime(), auth.WithLeeway(cfg.Security.JWT.Leeway()))
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	hasher, err := auth.NewPasswordHasher(auth.DefaultArgonParams)
	if err != nil {
		return nil, fmt.Errorf("creating password hasher: %w", err)
	}

	users := auth.NewUserRepository(db.DB)
	if cfg.Security.Seed.AdminEnabled {
		if _, err := auth.SeedAdmin(ctx, users, hasher, cfg.Security.Seed.AdminUsername, cfg.Security.Seed.AdminEmail, log.Logger); err != nil {
			return nil, fmt.Errorf("seeding admin: %w", err)
		}
	}

	var observer auth.Observer
	if influxClient != nil {
		observer = authMetrics{client: influxClient}
	}
	authLog := log.Component("auth").Logger
	gate := auth.NewGate(tokens, users, authLog, auth.WithObserver(observer))
	authenticator := auth.NewAuthenticator(users, hasher, tokens, authLog, observer)

	auditRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(auditRepo, log.Component("audit").Logger)

	jobService := jobs.NewService(
		jobs.NewSQLiteRepository(db.DB),
		recorder,
		log.Component("jobs").Logger,
		jobs.WithPublisher(eventPublisher(mqttClient, influxClient)),
	)

	deps := api.Deps{
		Config:        cfg.API,
		Logger:        log.Component("api"),
		Gate:          gate,
		Authenticator: authenticator,
		Users:         users,
		Jobs:          jobService,
		AuditRepo:     auditRepo,
		Recorder:      recorder,
		Database:      db,
		DBStats:       db,
		Version:       version,
	}
	// Assigned only when present so the interfaces stay nil when disabled.
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		deps.InfluxDB = influxClient
	}

	srv, err := api.New(deps)
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	return srv, nil
}

// connectMQTT connects to the broker when MQTT is enabled.
func connectMQTT(cfg *config.Config, log *logging.Logger) (*mqtt.Client, error) {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled")
		return nil, nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	return client, nil
}

// connectInfluxDB connects to InfluxDB when metrics are enabled.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.InfluxDB.Enabled {
		log.Info("InfluxDB disabled")
		return nil, nil
	}

	client, err := influxdb.Connect(cfg.InfluxDB)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client, nil
}

// eventPublisher fans job lifecycle events out to whichever sinks are
// enabled.
func eventPublisher(mqttClient *mqtt.Client, influxClient *influxdb.Client) events.Publisher {
	var sinks events.Multi
	if mqttClient != nil {
		sinks = append(sinks, events.NewMQTTPublisher(mqttClient))
	}
	if influxClient != nil {
		sinks = append(sinks, events.NewMetricsPublisher(influxClient))
	}
	if len(sinks) == 0 {
		return events.Nop{}
	}
	return sinks
}

// authMetrics records authentication outcomes as InfluxDB points.
type authMetrics struct {
	client *influxdb.Client
}

// ObserveAuth implements auth.Observer.
func (m authMetrics) ObserveAuth(o auth.Outcome) {
	m.client.WriteAuthEvent(string(o))
}

// getConfigPath returns the configuration file path.
// Uses JOBTRACK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("JOBTRACK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
