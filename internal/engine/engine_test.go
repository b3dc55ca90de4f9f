package engine

import (
	"bytes"
	"math/rand"
	"net"
	"strings"
	"testing"
	"time"

	"arenad/internal/client"
)

// fakeConn is a minimal net.Conn that records writes and never blocks,
// standing in for a real socket in tests.
type fakeConn struct {
	buf bytes.Buffer
}

func (f *fakeConn) Read(b []byte) (int, error)         { return 0, nil }
func (f *fakeConn) Write(b []byte) (int, error)         { return f.buf.Write(b) }
func (f *fakeConn) Close() error                        { return nil }
func (f *fakeConn) LocalAddr() net.Addr                 { return fakeAddr{} }
func (f *fakeConn) RemoteAddr() net.Addr                { return fakeAddr{} }
func (f *fakeConn) SetDeadline(time.Time) error          { return nil }
func (f *fakeConn) SetReadDeadline(time.Time) error     { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error    { return nil }

type fakeAddr struct{}

func (fakeAddr) Network() string { return "fake" }
func (fakeAddr) String() string  { return "fake:0" }

func newTestClient(handle uint64, name string) (*client.Client, *fakeConn) {
	conn := &fakeConn{}
	c := client.New(handle, conn)
	c.Name = name
	c.Named = true
	return c, conn
}

func TestBeginMatchRangesAndFirstMover(t *testing.T) {
	seed := int64(7)
	rng := rand.New(rand.NewSource(seed))
	ref := rand.New(rand.NewSource(seed))

	e := New(rng, NopObserver{})
	a, _ := newTestClient(1, "Alice")
	b, _ := newTestClient(2, "Bob")

	e.BeginMatch(a, b)

	wantAHP := 11 + ref.Intn(20)
	wantBHP := 11 + ref.Intn(20)
	wantAPM := 1 + ref.Intn(2)
	wantBPM := 1 + ref.Intn(2)
	wantFirst := ref.Intn(2)

	if a.HP != wantAHP || b.HP != wantBHP {
		t.Fatalf("hp = (%d,%d), want (%d,%d)", a.HP, b.HP, wantAHP, wantBHP)
	}
	if a.PowerMoves != wantAPM || b.PowerMoves != wantBPM {
		t.Fatalf("power moves = (%d,%d), want (%d,%d)", a.PowerMoves, b.PowerMoves, wantAPM, wantBPM)
	}
	if a.Opponent != b || b.Opponent != a {
		t.Fatalf("opponent pointers not mutually set")
	}
	if a.Turn == b.Turn {
		t.Fatalf("exactly one of the pair must hold the turn")
	}
	wantATurn := wantFirst == 0
	if a.Turn != wantATurn {
		t.Fatalf("first mover = %v, want %v", a.Turn, wantATurn)
	}
}

func TestHandleAttackShieldHalvesDamage(t *testing.T) {
	seed := int64(123)
	rng := rand.New(rand.NewSource(seed))
	ref := rand.New(rand.NewSource(seed))

	e := New(rng, NopObserver{})
	a, aConn := newTestClient(1, "Alice")
	b, bConn := newTestClient(2, "Bob")
	a.Opponent = b
	b.Opponent = a
	a.Turn = true
	a.HP, b.HP = 20, 20
	b.Shielded = true

	e.HandleCommand(a)("a")

	wantDmg := 2 + ref.Intn(5)
	wantDmg /= 2 // shield halves, integer division

	if b.HP != 20-wantDmg {
		t.Fatalf("b.HP = %d, want %d", b.HP, 20-wantDmg)
	}
	if b.Shielded {
		t.Fatalf("shield should be consumed")
	}
	if a.Turn {
		t.Fatalf("turn should have passed to b")
	}
	if !strings.Contains(aConn.buf.String(), "is shielded!") {
		t.Fatalf("actor should see shield notification: %q", aConn.buf.String())
	}
	if !strings.Contains(bConn.buf.String(), "is shielded!") {
		t.Fatalf("target should see shield notification: %q", bConn.buf.String())
	}
}

func TestPowerMoveExhaustion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(rng, NopObserver{})
	a, aConn := newTestClient(1, "Alice")
	b, _ := newTestClient(2, "Bob")
	a.Opponent = b
	b.Opponent = a
	a.Turn = true
	a.HP, b.HP = 20, 20
	a.PowerMoves = 1

	e.HandleCommand(a)("p")
	if a.PowerMoves != 0 {
		t.Fatalf("power moves = %d, want 0", a.PowerMoves)
	}
	if a.Turn {
		t.Fatalf("turn should pass after a successful power move")
	}

	// Flip the turn back for the depleted-case assertion.
	a.Turn = true
	b.Turn = false
	aConn.buf.Reset()

	e.HandleCommand(a)("p")
	if !a.Turn {
		t.Fatalf("turn must NOT pass when power moves are depleted")
	}
	if !strings.Contains(aConn.buf.String(), "no power moves left") {
		t.Fatalf("expected depletion message, got %q", aConn.buf.String())
	}
}

func TestForfeitCreditsSurvivor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(rng, NopObserver{})
	a, aConn := newTestClient(1, "Alice")
	b, _ := newTestClient(2, "Bob")
	e.BeginMatch(a, b)
	aConn.buf.Reset()

	e.Forfeit(b)

	if !strings.Contains(aConn.buf.String(), "You won the game!") {
		t.Fatalf("survivor should be credited with a win: %q", aConn.buf.String())
	}
	if !strings.Contains(aConn.buf.String(), "Waiting for opponent") {
		t.Fatalf("survivor should be re-queued: %q", aConn.buf.String())
	}
	if a.Opponent != nil {
		t.Fatalf("survivor's opponent should be cleared")
	}
	if a.LastOpponent != b {
		t.Fatalf("survivor's last_opponent should be the departed client")
	}
}

func TestUseShieldPotionDoesNotConsumeTurn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(rng, NopObserver{})
	a, _ := newTestClient(1, "Alice")
	b, _ := newTestClient(2, "Bob")
	a.Opponent = b
	b.Opponent = a
	a.Turn = true
	a.HP, b.HP = 20, 20
	a.Item = client.ItemShieldPotion

	e.HandleCommand(a)("u")

	if !a.Turn {
		t.Fatalf("shield potion must not consume the turn")
	}
	if !a.Shielded {
		t.Fatalf("shield potion should set Shielded")
	}
	if a.Item != client.ItemNone {
		t.Fatalf("item should be cleared after use, got %v", a.Item)
	}
}

func TestUseHealthPotionConsumesTurn(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(rng, NopObserver{})
	a, _ := newTestClient(1, "Alice")
	b, _ := newTestClient(2, "Bob")
	a.Opponent = b
	b.Opponent = a
	a.Turn = true
	a.HP, b.HP = 5, 20
	a.Item = client.ItemHealthPotion

	e.HandleCommand(a)("u")

	if a.HP != 15 {
		t.Fatalf("hp = %d, want 15", a.HP)
	}
	if a.Turn {
		t.Fatalf("health potion should consume the turn")
	}
	if a.Item != client.ItemNone {
		t.Fatalf("item should be cleared after use")
	}
}
