// Package engine implements the per-match turn state machine: command
// dispatch, damage resolution, items, shield, and victory detection
// (spec §4.5). No teacher or pack file implements turn-based combat, so
// this package is grounded directly in spec.md's literal step ordering;
// its shape — a single entry point dispatching on the first byte of a
// line, mutating two *client.Client values, and writing responses
// directly — follows the single-entry-point style of the teacher's own
// connection handlers (e.g. internal/server/server.go's handleWebSocket).
package engine

import (
	"math/rand"
	"time"

	"arenad/internal/client"
	"arenad/internal/protocol"
)

// Observer receives notifications of game events for the ambient
// metrics/eventbus stack to record; every method must return promptly —
// the engine calls these synchronously from the reactor goroutine.
type Observer interface {
	AttackUsed()
	PowerMoveUsed()
	ItemUsed(item string)
	MatchStarted(a, b string)
	MatchFinished(winner, loser string, forfeit bool, duration time.Duration)
}

// NopObserver implements Observer with no-ops, for tests.
type NopObserver struct{}

func (NopObserver) AttackUsed()                                                     {}
func (NopObserver) PowerMoveUsed()                                                  {}
func (NopObserver) ItemUsed(string)                                                 {}
func (NopObserver) MatchStarted(string, string)                                     {}
func (NopObserver) MatchFinished(string, string, bool, time.Duration)               {}

// Multi fans one Observer call out to every observer in the slice, in
// order. Used by cmd/arenad to drive both metrics and the event bus from
// a single Engine.
type Multi []Observer

func (m Multi) AttackUsed() {
	for _, o := range m {
		o.AttackUsed()
	}
}

func (m Multi) PowerMoveUsed() {
	for _, o := range m {
		o.PowerMoveUsed()
	}
}

func (m Multi) ItemUsed(item string) {
	for _, o := range m {
		o.ItemUsed(item)
	}
}

func (m Multi) MatchStarted(a, b string) {
	for _, o := range m {
		o.MatchStarted(a, b)
	}
}

func (m Multi) MatchFinished(winner, loser string, forfeit bool, duration time.Duration) {
	for _, o := range m {
		o.MatchFinished(winner, loser, forfeit, duration)
	}
}

// Engine holds the shared, seedable RNG the matcher and engine both draw
// from (spec §9's "Global RNG" design note) plus an event observer.
type Engine struct {
	rng      *rand.Rand
	observer Observer
}

// New builds an Engine. rng must not be shared concurrently — the engine
// is only ever driven from the single reactor goroutine.
func New(rng *rand.Rand, observer Observer) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{rng: rng, observer: observer}
}

// BeginMatch initialises combat state for a freshly formed pair and
// sends the engagement and opening status messages. Hp/power-move rolls
// and the first-mover coin flip are the only randomised steps outside
// damage resolution (spec §4.4).
func (e *Engine) BeginMatch(a, b *client.Client) {
	a.Opponent = b
	b.Opponent = a

	a.HP = 11 + e.rng.Intn(20) // [11,30]
	b.HP = 11 + e.rng.Intn(20)
	a.PowerMoves = 1 + e.rng.Intn(2) // [1,2]
	b.PowerMoves = 1 + e.rng.Intn(2)

	for _, c := range [...]*client.Client{a, b} {
		c.Speaking = false
		c.Item = client.ItemNone
		c.Shielded = false
	}

	now := time.Now()
	a.MatchStartedAt = now
	b.MatchStartedAt = now

	a.Send(protocol.Engage(b.Name))
	b.Send(protocol.Engage(a.Name))

	if e.rng.Intn(2) == 0 {
		a.Turn = true
		b.Turn = false
	} else {
		a.Turn = false
		b.Turn = true
	}

	e.observer.MatchStarted(a.Name, b.Name)
	e.emitPairStatus(a, b)
}

// HandleCommand dispatches one command line from c, the owner of the
// connection it arrived on.
func (e *Engine) HandleCommand(c *client.Client) func(line string) {
	return func(line string) {
		if c.Speaking {
			e.handleSpeech(c, line)
			return
		}
		if line == "" {
			return
		}
		switch line[0] {
		case 'a':
			e.handleAttack(c)
		case 'p':
			e.handlePowerMove(c)
		case 's':
			e.handleSpeak(c)
		case 'u':
			e.handleUseItem(c)
		default:
			// Unrecognised command: silently ignored, turn retained.
		}
	}
}

func (e *Engine) handleAttack(c *client.Client) {
	if c.Opponent == nil || !c.Turn {
		return
	}
	opp := c.Opponent

	dmg := 2 + e.rng.Intn(5) // [2,6]
	if opp.Shielded {
		dmg /= 2
		opp.Shielded = false
		shieldMsg := protocol.Shielded(opp.Name)
		c.Send(shieldMsg)
		opp.Send(shieldMsg)
	}
	opp.HP -= dmg

	c.Send(protocol.AttackActor(opp.Name, dmg))
	opp.Send(protocol.AttackTarget(c.Name, dmg))

	e.observer.AttackUsed()

	if e.checkVictory(opp, c) {
		return
	}

	e.grantItem(c)

	c.Turn = false
	opp.Turn = true
	e.emitPairStatus(c, opp)
}

func (e *Engine) handlePowerMove(c *client.Client) {
	if c.Opponent == nil || !c.Turn {
		return
	}
	opp := c.Opponent

	if c.PowerMoves == 0 {
		c.Send(protocol.PowerMoveDepleted())
		return
	}
	c.PowerMoves--
	e.observer.PowerMoveUsed()

	if e.rng.Intn(2) == 0 {
		c.Send(protocol.PowerMissActor())
		opp.Send(protocol.PowerMissTarget(c.Name))
	} else {
		dmg := 6 + e.rng.Intn(13) // [6,18]
		opp.HP -= dmg
		c.Send(protocol.PowerHitActor(opp.Name, dmg))
		opp.Send(protocol.PowerHitTarget(c.Name, dmg))
		if e.checkVictory(opp, c) {
			return
		}
	}

	c.Turn = false
	opp.Turn = true
	e.emitPairStatus(c, opp)
}

func (e *Engine) handleSpeak(c *client.Client) {
	if c.Opponent == nil || !c.Turn {
		return
	}
	c.Send(protocol.SpeakPrompt())
	c.Speaking = true
}

func (e *Engine) handleSpeech(c *client.Client, line string) {
	c.Speaking = false
	opp := c.Opponent
	if opp != nil {
		opp.Send(protocol.ChatDelivery(c.Name, line+"\n"))
	}
	c.Send(protocol.ChatReceipt())
	if opp != nil {
		e.emitPairStatus(c, opp)
	}
}

func (e *Engine) handleUseItem(c *client.Client) {
	if c.Opponent == nil || !c.Turn || c.Item == client.ItemNone {
		return
	}
	opp := c.Opponent

	msg := protocol.ItemUsed(c.Name, c.Item.Name())
	c.Send(msg)
	opp.Send(msg)
	e.observer.ItemUsed(c.Item.Name())

	consumesTurn := true
	switch c.Item {
	case client.ItemHealthPotion:
		c.HP += 10
	case client.ItemShieldPotion:
		c.Shielded = true
		consumesTurn = false
	case client.ItemStrengthPotion:
		c.PowerMoves++
	}
	c.Item = client.ItemNone

	if consumesTurn {
		c.Turn = false
		opp.Turn = true
	}
	e.emitPairStatus(c, opp)
}

// grantItem is rolled only after a successful attack. A previously held,
// unused item is silently overwritten — preserved as observed (spec §9
// Open Question: item overwrite).
func (e *Engine) grantItem(c *client.Client) {
	switch e.rng.Intn(3) {
	case 0:
		c.Item = client.ItemHealthPotion
	case 1:
		c.Item = client.ItemShieldPotion
	default:
		c.Item = client.ItemStrengthPotion
	}
}

// checkVictory checks primary (opp) then self (c) for hp <= 0, in that
// order, per spec §4.5 step 5. Returns true if the match resolved.
func (e *Engine) checkVictory(primary, secondary *client.Client) bool {
	if primary.HP <= 0 {
		e.resolveVictory(secondary, primary)
		return true
	}
	if secondary.HP <= 0 {
		e.resolveVictory(primary, secondary)
		return true
	}
	return false
}

func (e *Engine) resolveVictory(winner, loser *client.Client) {
	loser.Send(protocol.Lost())
	winner.Send(protocol.Won())

	winner.LastOpponent = loser
	loser.LastOpponent = winner
	winner.Opponent = nil
	loser.Opponent = nil

	winner.Send(protocol.Waiting())
	loser.Send(protocol.Waiting())

	e.observer.MatchFinished(winner.Name, loser.Name, false, time.Since(winner.MatchStartedAt))
}

// Forfeit is wired as the registry's disconnect hook (spec §4.5
// "Forfeit on disconnect"): the departing client's opponent, if any, is
// credited with a win and re-queued. The departing client's own fields
// are left untouched since it is about to be destroyed.
func (e *Engine) Forfeit(departing *client.Client) {
	opp := departing.Opponent
	if opp == nil {
		return
	}
	opp.Send(protocol.Won())
	opp.LastOpponent = departing
	opp.Opponent = nil
	opp.Send(protocol.Waiting())
	e.observer.MatchFinished(opp.Name, departing.Name, true, time.Since(opp.MatchStartedAt))
}

// emitPairStatus sends the status frame to whichever of a/b currently
// holds the turn, and the waiting frame to the other.
func (e *Engine) emitPairStatus(a, b *client.Client) {
	turnHolder, other := a, b
	if !a.Turn {
		turnHolder, other = b, a
	}
	turnHolder.Send(protocol.StatusTurn(
		turnHolder.DisplayHP(), turnHolder.PowerMoves,
		other.Name, other.DisplayHP(),
		turnHolder.Item.Name(), turnHolder.Item.Description(),
	))
	other.Send(protocol.StatusWaiting(other.DisplayHP(), turnHolder.Name))
}
