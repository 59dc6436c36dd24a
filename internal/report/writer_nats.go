package report

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/factory"
	"github.com/t1a2l/SkyTools/internal/model"
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		return NewNATSWriter(def.NATS)
	})
}

// roundMessage is the JSON payload published for each snapshot round.
type roundMessage struct {
	Timestamp string  `json:"timestamp"`
	Entries   []Entry `json:"entries"`
}

// NATSWriter publishes each snapshot round as a JSON message, so remote
// collectors can subscribe to the latency stream.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server named in the config.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &NATSWriter{nc: nc, subject: cfg.Subject}, nil
}

// Write serializes one round to JSON and publishes it.
func (w *NATSWriter) Write(round model.Round, timestamp string) error {
	msg := roundMessage{
		Timestamp: timestamp,
		Entries:   SortedEntries(round),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	return w.nc.Publish(w.subject, data)
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() {
	if w.nc != nil {
		w.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
