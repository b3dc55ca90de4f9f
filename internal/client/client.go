// Package client holds the per-connection state a live socket carries
// through its lifetime: identity, pairing, and combat state. It is the
// generalization of the teacher's pkg/websocket Client (a peer struct
// carrying a connection, an ID, and a back-reference to its owner) from a
// websocket message relay to a turn-based combat participant.
package client

import (
	"io"
	"log"
	"net"
	"time"

	"arenad/internal/framer"
)

// MaxName is the maximum length, in bytes, of a name line (spec §6).
const MaxName = 25

// ChatLimit bounds any single line once a client is named — generous
// enough that no ordinary command or chat message ever overflows it; the
// framer only disconnects-the-buffer (not the connection) on overflow.
const ChatLimit = 2000

// Item is one of the three random pickups an attack may grant.
type Item int

const (
	ItemNone Item = iota
	ItemHealthPotion
	ItemShieldPotion
	ItemStrengthPotion
)

// Name returns the literal item identifier used in wire messages.
func (i Item) Name() string {
	switch i {
	case ItemHealthPotion:
		return "HealthPotion"
	case ItemShieldPotion:
		return "ShieldPotion"
	case ItemStrengthPotion:
		return "StrengthPotion"
	default:
		return "None"
	}
}

// Description returns the human-readable effect text shown in status
// frames; wording follows the original source's HEALTH_DESCRIPTION /
// SHIELD_DESCRIPTION / POWER_DESCRIPTION constants.
func (i Item) Description() string {
	switch i {
	case ItemHealthPotion:
		return "This Potion increases your health by 10 hp!"
	case ItemShieldPotion:
		return "This potion reduces the next damage you take by half!"
	case ItemStrengthPotion:
		return "This Potion increases your powerMoves by 1!"
	default:
		return "None"
	}
}

// Client is one connected socket. Every field below is touched from
// exactly one goroutine: the reactor's event loop (see internal/reactor).
// Per-connection read goroutines only ever call Conn.Read and post the
// resulting bytes back to the reactor; they never read or write these
// fields, so no mutex guards them.
type Client struct {
	Handle     uint64
	Conn       net.Conn
	RemoteAddr string
	ConnectedAt time.Time

	Framer *framer.Framer

	Name    string
	Named   bool
	Speaking bool

	Opponent     *Client
	LastOpponent *Client

	HP         int
	PowerMoves int
	Turn       bool
	Shielded   bool
	Item       Item

	// MatchStartedAt is set by the engine when a match begins, used only
	// to report match duration via the metrics observer.
	MatchStartedAt time.Time
}

// New constructs a Client with the defaults the acceptor assigns on
// admission: unnamed, unpaired, empty framer.
func New(handle uint64, conn net.Conn) *Client {
	remote := ""
	if conn != nil {
		remote = conn.RemoteAddr().String()
	}
	return &Client{
		Handle:      handle,
		Conn:        conn,
		RemoteAddr:  remote,
		ConnectedAt: time.Now(),
		Framer:      framer.New(MaxName),
	}
}

// DisplayHP clamps hp to zero for presentation; the underlying HP field
// may be transiently negative between a damage step and victory check.
func (c *Client) DisplayHP() int {
	if c.HP < 0 {
		return 0
	}
	return c.HP
}

// Send writes msg to the client's socket directly. The design assumes
// small, human-paced message volumes (spec §5) and issues writes without
// buffering or backpressure; a write error is logged and otherwise
// ignored — the next failed read will drive removal through the registry.
func (c *Client) Send(msg string) {
	if c.Conn == nil {
		return
	}
	if _, err := io.WriteString(c.Conn, msg); err != nil {
		log.Printf("[client %d] write error: %v", c.Handle, err)
	}
}
