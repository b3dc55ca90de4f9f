// Package eventbus publishes arena lifecycle events to NATS, fire and
// forget. It is grounded on the teacher's pkg/nats/client.go Client, cut
// down to the publish side only: no Subscribe/Request/ParseMessage,
// since the arena server has nothing to consume from NATS, only events
// to announce. The connect/disconnect/reconnect logging handlers and
// the Subjects builder pattern are carried over directly.
package eventbus

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Config mirrors the teacher's nats.Config, trimmed to the options this
// server actually sets explicitly.
type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Bus publishes ArenaEvents to NATS. A nil *Bus is valid and every
// method on it is a no-op, so callers can wire a Bus unconditionally and
// simply pass nil when no NATS URL was configured (spec's eventbus is
// explicitly optional).
type Bus struct {
	conn   *nats.Conn
	logger *log.Logger
}

// Connect dials NATS. Returns an error if the URL is unreachable; the
// caller decides whether that's fatal (cmd/arenad logs and continues
// without an event bus rather than refusing to start the arena).
func Connect(cfg Config, logger *log.Logger) (*Bus, error) {
	b := &Bus{logger: logger}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ConnectHandler(b.connectHandler),
		nats.DisconnectErrHandler(b.disconnectHandler),
		nats.ReconnectHandler(b.reconnectHandler),
		nats.ErrorHandler(b.errorHandler),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	b.conn = conn
	return b, nil
}

func (b *Bus) connectHandler(conn *nats.Conn) {
	b.logger.Printf("[eventbus] connected to %s", conn.ConnectedUrl())
}

func (b *Bus) disconnectHandler(conn *nats.Conn, err error) {
	if err != nil {
		b.logger.Printf("[eventbus] disconnected with error: %v", err)
		return
	}
	b.logger.Printf("[eventbus] disconnected")
}

func (b *Bus) reconnectHandler(conn *nats.Conn) {
	b.logger.Printf("[eventbus] reconnected to %s", conn.ConnectedUrl())
}

func (b *Bus) errorHandler(conn *nats.Conn, sub *nats.Subscription, err error) {
	b.logger.Printf("[eventbus] error: %v", err)
}

// Close closes the connection (without draining it first).
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.conn.Close()
}

// Subjects builds the arena's NATS subject names, mirroring the
// teacher's Subjects/SubjectBuilder pattern.
type Subjects struct{}

func (Subjects) ClientConnected() string    { return "arena.events.client_connected" }
func (Subjects) ClientDisconnected() string { return "arena.events.client_disconnected" }
func (Subjects) MatchStarted() string       { return "arena.events.match_started" }
func (Subjects) MatchFinished() string      { return "arena.events.match_finished" }

var SubjectBuilder = Subjects{}

// publish marshals obj and publishes it to subject, logging (not
// returning) any failure — event publication is an ambient side effect,
// never allowed to block or fail the combat protocol it observes.
func (b *Bus) publish(subject string, obj interface{}) {
	if b == nil || b.conn == nil {
		return
	}
	data, err := json.Marshal(obj)
	if err != nil {
		b.logger.Printf("[eventbus] marshal error for %s: %v", subject, err)
		return
	}
	if err := b.conn.Publish(subject, data); err != nil {
		b.logger.Printf("[eventbus] publish error for %s: %v", subject, err)
	}
}

// ClientConnectedEvent is published when a socket is admitted.
type ClientConnectedEvent struct {
	Handle    uint64    `json:"handle"`
	Remote    string    `json:"remote_addr"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientDisconnectedEvent is published when a socket is removed.
type ClientDisconnectedEvent struct {
	Handle    uint64    `json:"handle"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchStartedEvent is published when the matcher pairs two clients.
type MatchStartedEvent struct {
	A         string    `json:"a"`
	B         string    `json:"b"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchFinishedEvent is published when a match resolves, by victory or
// forfeit.
type MatchFinishedEvent struct {
	Winner     string        `json:"winner"`
	Loser      string        `json:"loser"`
	Forfeit    bool          `json:"forfeit"`
	Duration   time.Duration `json:"duration_ns"`
	Timestamp  time.Time     `json:"timestamp"`
}

func (b *Bus) ClientConnected(handle uint64, remote string) {
	b.publish(SubjectBuilder.ClientConnected(), ClientConnectedEvent{
		Handle: handle, Remote: remote, Timestamp: time.Now(),
	})
}

func (b *Bus) ClientDisconnected(handle uint64, name string) {
	b.publish(SubjectBuilder.ClientDisconnected(), ClientDisconnectedEvent{
		Handle: handle, Name: name, Timestamp: time.Now(),
	})
}

func (b *Bus) MatchStarted(a, other string) {
	b.publish(SubjectBuilder.MatchStarted(), MatchStartedEvent{
		A: a, B: other, Timestamp: time.Now(),
	})
}

func (b *Bus) MatchFinished(winner, loser string, forfeit bool, duration time.Duration) {
	b.publish(SubjectBuilder.MatchFinished(), MatchFinishedEvent{
		Winner: winner, Loser: loser, Forfeit: forfeit, Duration: duration, Timestamp: time.Now(),
	})
}

// Observer adapts *Bus to engine.Observer so cmd/arenad can hand it to
// engine.Multi alongside *metrics.Metrics. Per-attack/per-power-move/
// per-item events have no NATS subject defined (spec's domain stack only
// announces connection and match lifecycle), so those three methods are
// no-ops.
type Observer struct {
	Bus *Bus
}

func (o Observer) AttackUsed()        {}
func (o Observer) PowerMoveUsed()     {}
func (o Observer) ItemUsed(string)    {}

func (o Observer) MatchStarted(a, b string) {
	o.Bus.MatchStarted(a, b)
}

func (o Observer) MatchFinished(winner, loser string, forfeit bool, duration time.Duration) {
	o.Bus.MatchFinished(winner, loser, forfeit, duration)
}
