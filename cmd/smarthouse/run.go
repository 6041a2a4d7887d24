package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smarthouse-core/internal/api"
	"github.com/nerrad567/smarthouse-core/internal/bridge"
	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/broker"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

// shutdownTimeout bounds saving the snapshot after the run context ends.
const shutdownTimeout = 10 * time.Second

// run serves the house until ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	log := logging.Default()
	log.Info("starting SmartHouse Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "path", db.Path())

	repo := house.NewSQLiteRepository(db.DB)
	h, err := loadHouse(ctx, cfg.House, repo, log)
	if err != nil {
		return err
	}

	var (
		mqttClient *mqtt.Client
		link       *mqttBridge
	)
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Embedded.Enabled {
			b, startErr := broker.Start(cfg.MQTT.Embedded, log.With("component", "broker").Logger)
			if startErr != nil {
				return fmt.Errorf("starting embedded broker: %w", startErr)
			}
			defer func() {
				log.Info("stopping embedded broker")
				if closeErr := b.Close(); closeErr != nil {
					log.Error("error stopping embedded broker", "error", closeErr)
				}
			}()
			log.Info("embedded broker listening", "address", b.Address())
		}

		link, err = connectBridge(cfg.MQTT, h, log)
		if err != nil {
			return err
		}
		mqttClient = link.client
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		n := bridge.AttachSwitchDriver(h, device.NewStaticSwitchDriver(nil))
		log.Info("MQTT disabled, sockets use simulated switching", "sockets", n)
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.With("component", "api"),
			House:   h,
			Repo:    repo,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		log.Info("API server listening", "address", apiServer.Addr())
	}

	if err := healthCheck(ctx, db, mqttClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal", "devices", h.Len())

	serveReports(ctx, cfg, h, mqttClient, apiServer, log)

	log.Info("shutdown signal received, saving house state")
	if link != nil {
		link.stop(log)
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.SaveTo(saveCtx, repo); err != nil {
		return fmt.Errorf("saving house state: %w", err)
	}

	log.Info("SmartHouse Core stopped")
	return nil
}

// loadHouse builds the configured house and overlays the state saved by a
// previous run. Saved devices replace declared ones under the same key.
func loadHouse(ctx context.Context, cfg config.HouseConfig, repo house.Repository, log *logging.Logger) (*house.SmartHouse, error) {
	h, err := house.Build(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("building house: %w", err)
	}

	n, err := h.LoadFrom(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("loading saved state: %w", err)
	}
	if n == 0 {
		log.Info("no saved state, using declared devices")
	}
	return h, nil
}

// mqttBridge is the broker connection with the handlers feeding the house.
type mqttBridge struct {
	client *mqtt.Client
	ingest *bridge.Ingest
	turner *bridge.Turner
}

// stop unsubscribes the handlers so nothing changes the house while its
// state is saved. The connection stays open.
func (b *mqttBridge) stop(log *logging.Logger) {
	if err := b.ingest.Stop(b.client); err != nil {
		log.Warn("ingest not stopped", "error", err)
	}
	if err := b.turner.Stop(b.client); err != nil {
		log.Warn("turn requests not stopped", "error", err)
	}
	log.Info("bridge stopped", "subscriptions", b.client.SubscriptionCount())
}

// connectBridge connects to the broker and wires ingest, turn requests and
// switch commands to h.
func connectBridge(cfg config.MQTTConfig, h *house.SmartHouse, log *logging.Logger) (*mqttBridge, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.With("component", "mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)

	qos := byte(cfg.QoS) //nolint:gosec // Validated to 0-2 by config.Validate
	bridgeLog := log.With("component", "bridge")

	ingest := bridge.NewIngest(h)
	ingest.SetLogger(bridgeLog)
	if err := ingest.Start(client, qos); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	turner := bridge.NewTurner(h)
	turner.SetLogger(bridgeLog)
	if err := turner.Start(client, qos); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, err
	}

	n := bridge.AttachSwitchDriver(h, bridge.NewSwitchDriver(client, qos))
	log.Info("bridge started", "sockets", n, "subscriptions", client.SubscriptionCount())
	return &mqttBridge{client: client, ingest: ingest, turner: turner}, nil
}

// serveReports publishes the report at the configured interval until ctx
// is done. Without MQTT the report is logged instead. WebSocket subscribers
// get it too when the API is up. A zero interval only waits.
func serveReports(ctx context.Context, cfg *config.Config, h *house.SmartHouse, client *mqtt.Client, srv *api.Server, log *logging.Logger) {
	interval := cfg.GetReportInterval()
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if srv != nil {
				srv.BroadcastReport()
			}
			if client == nil {
				log.Info("house report", "lines", h.CreateReport())
				continue
			}
			if err := bridge.PublishReport(client, h); err != nil {
				log.Warn("report not published", "error", err)
			}
		}
	}
}

// healthCheck verifies the database and whichever of the broker
// connection and API server are running.
func healthCheck(ctx context.Context, db *database.DB, client *mqtt.Client, srv *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if client != nil {
		if err := client.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if srv != nil {
		if err := srv.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}
	return nil
}
