package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/Dosada05/scoreboard/models"
)

const DefaultSubjectPrefix = "scoreboard.events"

// Conn is the subset of *nats.Conn used here.
type Conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type NATSConfig struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		Name:          "scoreboard",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Connect dials NATS with reconnect handlers that log through zerolog.
func Connect(cfg NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// envelope is the wire form; payload stays raw so the relay forwards it untouched.
type envelope struct {
	Type      models.EventType `json:"type"`
	MatchID   int              `json:"match_id,omitempty"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NATSPublisher publishes every event on <prefix>.<type>.
type NATSPublisher struct {
	conn   Conn
	prefix string
	now    func() time.Time
}

func NewNATSPublisher(conn Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix, now: time.Now}
}

func (p *NATSPublisher) Subject(t models.EventType) string {
	return p.prefix + "." + strings.ToLower(string(t))
}

func (p *NATSPublisher) Publish(ctx context.Context, event models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	data, err := json.Marshal(envelope{
		Type:      event.Type,
		MatchID:   event.MatchID,
		Payload:   payload,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Int("size", len(data)).Msg("event published")
	return nil
}

// Relay feeds events received from NATS into a local publisher, normally the
// HubPublisher of this instance.
type Relay struct {
	conn   Conn
	prefix string
	local  Publisher
	sub    *nats.Subscription
}

func NewRelay(conn Conn, prefix string, local Publisher) *Relay {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Relay{conn: conn, prefix: prefix, local: local}
}

// Run subscribes to <prefix>.> and blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub, err := r.conn.Subscribe(r.prefix+".>", func(msg *nats.Msg) {
		r.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s.>: %w", r.prefix, err)
	}
	r.sub = sub
	log.Info().Str("subject", r.prefix+".>").Msg("event relay started")

	<-ctx.Done()
	if r.sub != nil {
		if err := r.sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("event relay unsubscribe failed")
		}
	}
	log.Info().Msg("event relay stopped")
	return nil
}

func (r *Relay) handle(ctx context.Context, msg *nats.Msg) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to decode relayed event")
		return
	}
	event := models.Event{Type: env.Type, MatchID: env.MatchID}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		event.Payload = env.Payload
	}
	if err := r.local.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("type", string(env.Type)).Msg("failed to deliver relayed event")
	}
}
