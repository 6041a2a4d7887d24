// Package broker runs an embedded MQTT broker for houses that have no
// broker of their own.
package broker

import (
	"errors"
	"fmt"
	"log/slog"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"

	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
)

// ErrNoAddress is returned when the embedded broker has nowhere to listen.
var ErrNoAddress = errors.New("broker: listen address is required")

const listenerID = "smarthouse-tcp"

// Broker is a running embedded broker.
type Broker struct {
	server  *mochi.Server
	address string
}

// Start listens on cfg.Address and serves MQTT in the background.
// Every client is allowed; the broker is meant for a trusted LAN.
// A nil logger discards the broker's own log output.
func Start(cfg config.EmbeddedBrokerConfig, logger *slog.Logger) (*Broker, error) {
	if cfg.Address == "" {
		return nil, ErrNoAddress
	}

	opts := &mochi.Options{InlineClient: true}
	if logger != nil {
		opts.Logger = logger
	} else {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	server := mochi.New(opts)

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("adding auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: listenerID, Address: cfg.Address})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("listening on %s: %w", cfg.Address, err)
	}

	// Serve starts the listener goroutines and returns.
	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("starting broker: %w", err)
	}
	return &Broker{server: server, address: cfg.Address}, nil
}

// Address returns the address the broker listens on.
func (b *Broker) Address() string {
	return b.address
}

// Clients returns the number of connected clients, excluding the inline one.
func (b *Broker) Clients() int {
	n := 0
	for _, cl := range b.server.Clients.GetAll() {
		if !cl.Net.Inline && !cl.Closed() {
			n++
		}
	}
	return n
}

// Publish delivers payload to subscribers of topic without a network hop.
func (b *Broker) Publish(topic string, payload []byte, retain bool, qos byte) error {
	if err := b.server.Publish(topic, payload, retain, qos); err != nil {
		return fmt.Errorf("broker publish: %w", err)
	}
	return nil
}

// Close stops the listener and disconnects every client.
func (b *Broker) Close() error {
	if err := b.server.Close(); err != nil {
		return fmt.Errorf("closing broker: %w", err)
	}
	return nil
}
