// Package matcher scans unpaired, named clients and forms 1v1 pairs
// under a rematch-avoidance rule (spec §4.4). No teacher or pack file
// does matchmaking with a rematch constraint; the periodic-scan-a-queue
// shape below is styled after the retrieval pack's
// other_examples matchmaker (a ticker-driven loop that locks, scans a
// queue, and pairs players two at a time), adapted here to a full
// Fisher-Yates rescan triggered by the reactor whenever the unpaired set
// may have changed, rather than a fixed tick.
package matcher

import (
	"log"
	"math/rand"

	"arenad/internal/client"
	"arenad/internal/engine"
	"arenad/internal/registry"
)

// Matcher pairs unpaired, named clients.
type Matcher struct {
	rng    *rand.Rand
	engine *engine.Engine
}

// New builds a Matcher sharing the engine's seeded RNG, per spec §9's
// "Global RNG" requirement — one process-wide generator the matcher and
// engine both draw from.
func New(rng *rand.Rand, eng *engine.Engine) *Matcher {
	return &Matcher{rng: rng, engine: eng}
}

// Run collects every unpaired, named client in registry order, shuffles
// them (Fisher-Yates), and pairs consecutive entries whose last_opponent
// relation does not forbid it. Anyone still unpaired after that gets a
// best-effort second pass, scanning remaining candidates in registry
// order and allowing a rematch only as a last resort (spec §9 Open
// Question, resolved in DESIGN.md/SPEC_FULL.md: the rematch-permitting
// fallback is implemented and logged when it fires).
func (m *Matcher) Run(reg *registry.Registry) {
	var unpaired []*client.Client
	reg.ForEach(func(c *client.Client) {
		if c.Named && c.Opponent == nil {
			unpaired = append(unpaired, c)
		}
	})
	if len(unpaired) < 2 {
		return
	}

	shuffled := make([]*client.Client, len(unpaired))
	copy(shuffled, unpaired)
	m.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i := 0; i+1 < len(shuffled); i += 2 {
		p, q := shuffled[i], shuffled[i+1]
		if eligible(p, q) {
			m.engine.BeginMatch(p, q)
		}
	}

	var leftover []*client.Client
	for _, c := range unpaired {
		if c.Opponent == nil {
			leftover = append(leftover, c)
		}
	}

	m.secondPass(leftover)
}

// secondPass pairs whatever is left, in order, preferring rematch-free
// pairs but falling back to a rematch rather than leaving two willing
// clients unpaired.
func (m *Matcher) secondPass(remaining []*client.Client) {
	for len(remaining) >= 2 {
		p := remaining[0]
		rest := remaining[1:]

		idx := -1
		for i, q := range rest {
			if eligible(p, q) {
				idx = i
				break
			}
		}
		if idx < 0 {
			// No rematch-free partner available; pair with the first
			// candidate as a last resort.
			log.Printf("[matcher] no rematch-free partner for %s; pairing with last opponent", p.Name)
			idx = 0
		}

		q := rest[idx]
		m.engine.BeginMatch(p, q)

		next := make([]*client.Client, 0, len(rest)-1)
		for i, c := range rest {
			if i != idx {
				next = append(next, c)
			}
		}
		remaining = next
	}
}

// eligible reports whether p and q may be paired: neither was the
// other's most recent opponent.
func eligible(p, q *client.Client) bool {
	return p.LastOpponent != q && q.LastOpponent != p
}
