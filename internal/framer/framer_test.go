package framer

import (
	"reflect"
	"testing"
)

func TestFeedSingleChunk(t *testing.T) {
	f := New(64)
	lines, overflow := f.Feed([]byte("Bob\nhello\n"))
	if overflow {
		t.Fatalf("unexpected overflow")
	}
	want := []string{"Bob", "hello"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
}

// TestFramingLaw asserts the chunk-boundary independence property
// (spec's framing law): the same logical input yields the same lines no
// matter how it's split across Feed calls.
func TestFramingLaw(t *testing.T) {
	whole := "alpha\nbeta\ngamma\n"
	splits := [][]int{
		{len(whole)},
		{1, len(whole) - 1},
		{3, 6, 100},
		{5, 5, 5, 2},
	}

	var reference []string
	for i, lens := range splits {
		f := New(64)
		var got []string
		pos := 0
		for _, n := range lens {
			end := pos + n
			if end > len(whole) {
				end = len(whole)
			}
			if pos >= len(whole) {
				break
			}
			lines, overflow := f.Feed([]byte(whole[pos:end]))
			if overflow {
				t.Fatalf("split %d: unexpected overflow", i)
			}
			got = append(got, lines...)
			pos = end
		}
		if i == 0 {
			reference = got
			continue
		}
		if !reflect.DeepEqual(got, reference) {
			t.Fatalf("split %d produced %v, reference %v", i, got, reference)
		}
	}
}

func TestFeedCarriesPartialLineAcrossCalls(t *testing.T) {
	f := New(64)
	lines, _ := f.Feed([]byte("hel"))
	if len(lines) != 0 {
		t.Fatalf("expected no complete lines yet, got %v", lines)
	}
	lines, _ = f.Feed([]byte("lo\n"))
	if !reflect.DeepEqual(lines, []string{"hello"}) {
		t.Fatalf("got %v", lines)
	}
}

func TestFeedStripsTrailingCR(t *testing.T) {
	f := New(64)
	lines, _ := f.Feed([]byte("Bob\r\n"))
	if !reflect.DeepEqual(lines, []string{"Bob"}) {
		t.Fatalf("got %v", lines)
	}
}

func TestFeedOverflowDiscardsBuffer(t *testing.T) {
	f := New(8)
	lines, overflow := f.Feed([]byte("012345678901234"))
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
	if !overflow {
		t.Fatalf("expected overflow")
	}

	// Buffer was discarded; a fresh line starts clean.
	lines, overflow = f.Feed([]byte("Bob\n"))
	if overflow {
		t.Fatalf("unexpected overflow after discard")
	}
	if !reflect.DeepEqual(lines, []string{"Bob"}) {
		t.Fatalf("got %v", lines)
	}
}

func TestSetLimit(t *testing.T) {
	f := New(4)
	if _, overflow := f.Feed([]byte("12345")); !overflow {
		t.Fatalf("expected overflow at limit 4")
	}
	f.SetLimit(100)
	if _, overflow := f.Feed([]byte("1234567890")); overflow {
		t.Fatalf("unexpected overflow after raising limit")
	}
}

func TestReset(t *testing.T) {
	f := New(64)
	f.Feed([]byte("partial"))
	f.Reset()
	lines, _ := f.Feed([]byte("\n"))
	if !reflect.DeepEqual(lines, []string{""}) {
		t.Fatalf("expected buffer cleared by Reset, got %v", lines)
	}
}
