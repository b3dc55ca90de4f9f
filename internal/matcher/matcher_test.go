package matcher

import (
	"math/rand"
	"testing"

	"arenad/internal/client"
	"arenad/internal/engine"
	"arenad/internal/registry"
)

func namedClient(handle uint64, name string) *client.Client {
	c := client.New(handle, nil)
	c.Name = name
	c.Named = true
	return c
}

func TestRunPairsTwoUnpairedClients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	eng := engine.New(rng, engine.NopObserver{})
	m := New(rng, eng)

	reg := registry.New(nil)
	a := namedClient(1, "Alice")
	b := namedClient(2, "Bob")
	reg.Insert(a)
	reg.Insert(b)

	m.Run(reg)

	if a.Opponent != b || b.Opponent != a {
		t.Fatalf("a and b should have been paired")
	}
}

// TestRunAvoidsImmediateRematch models spec §8 scenario 6: three named
// clients where A and B just finished a match must not be paired again
// while C is available.
func TestRunAvoidsImmediateRematch(t *testing.T) {
	reg := registry.New(nil)
	a := namedClient(1, "Alice")
	b := namedClient(2, "Bob")
	c := namedClient(3, "Carol")
	a.LastOpponent = b
	b.LastOpponent = a
	reg.Insert(a)
	reg.Insert(b)
	reg.Insert(c)

	// Run many times under different seeds to make sure the
	// rematch-avoidance rule holds regardless of shuffle order.
	for seed := int64(0); seed < 50; seed++ {
		a.Opponent, b.Opponent, c.Opponent = nil, nil, nil
		rng2 := rand.New(rand.NewSource(seed))
		eng2 := engine.New(rng2, engine.NopObserver{})
		m2 := New(rng2, eng2)
		m2.Run(reg)

		if a.Opponent == b {
			t.Fatalf("seed %d: A and B were rematched while C was available", seed)
		}
	}
}

// TestSecondPassAllowsRematchAsLastResort models the fallback rule: with
// only two clients available and a standing last-opponent relation, they
// must still be paired rather than left idle forever.
func TestSecondPassAllowsRematchAsLastResort(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	eng := engine.New(rng, engine.NopObserver{})
	m := New(rng, eng)

	reg := registry.New(nil)
	a := namedClient(1, "Alice")
	b := namedClient(2, "Bob")
	a.LastOpponent = b
	b.LastOpponent = a
	reg.Insert(a)
	reg.Insert(b)

	m.Run(reg)

	if a.Opponent != b || b.Opponent != a {
		t.Fatalf("with no other candidate, a rematch must still occur")
	}
}

func TestRunNoopBelowTwoUnpaired(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	eng := engine.New(rng, engine.NopObserver{})
	m := New(rng, eng)

	reg := registry.New(nil)
	a := namedClient(1, "Alice")
	reg.Insert(a)

	m.Run(reg)

	if a.Opponent != nil {
		t.Fatalf("a lone client must not be paired")
	}
}

func TestRunSkipsAlreadyPairedClients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	eng := engine.New(rng, engine.NopObserver{})
	m := New(rng, eng)

	reg := registry.New(nil)
	a := namedClient(1, "Alice")
	b := namedClient(2, "Bob")
	c := namedClient(3, "Carol")
	a.Opponent = b
	b.Opponent = a
	reg.Insert(a)
	reg.Insert(b)
	reg.Insert(c)

	m.Run(reg)

	if a.Opponent != b || b.Opponent != a {
		t.Fatalf("an already-paired pair must not be disturbed")
	}
	if c.Opponent != nil {
		t.Fatalf("C has no eligible partner and should remain unpaired")
	}
}
