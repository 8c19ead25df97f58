package voice

import (
	"errors"
	"testing"

	"github.com/cbegin/vpiano-go/internal/pitch"
)

func allNames() []string {
	return pitch.Names(pitch.All())
}

func TestAcquireRoundRobinCoversPool(t *testing.T) {
	bank := NewMemory(allNames()...)
	pool := NewPool(bank, DefaultPoolSize)
	for _, name := range allNames() {
		seen := map[Voice]bool{}
		for i := 0; i < DefaultPoolSize*2; i++ {
			v := pool.Acquire(name)
			if v == nil {
				t.Fatalf("Acquire(%s) = nil", name)
			}
			seen[v] = true
			if pool.Active(name) != v {
				t.Fatalf("active voice for %s not bound to last acquire", name)
			}
		}
		if len(seen) != DefaultPoolSize {
			t.Fatalf("%s used %d voices, want %d", name, len(seen), DefaultPoolSize)
		}
		if got := pool.Size(name); got != DefaultPoolSize {
			t.Fatalf("Size(%s) = %d, want %d", name, got, DefaultPoolSize)
		}
	}
}

func TestAcquireAlternates(t *testing.T) {
	bank := NewMemory("C3")
	pool := NewPool(bank, 3)
	a, b, c, d := pool.Acquire("C3"), pool.Acquire("C3"), pool.Acquire("C3"), pool.Acquire("C3")
	if a == b || b == c || a == c {
		t.Fatalf("consecutive acquires reused a voice")
	}
	if d != a {
		t.Fatalf("fourth acquire should wrap to the first voice")
	}
	if len(bank.Voices("C3")) != 3 {
		t.Fatalf("bank created %d voices, want 3", len(bank.Voices("C3")))
	}
}

func TestAcquireUnmapped(t *testing.T) {
	pool := NewPool(NewMemory("C3"), 3)
	if v := pool.Acquire("D3"); v != nil {
		t.Fatalf("Acquire(D3) = %v, want nil", v)
	}
	if v := pool.Trigger("nope"); v != nil {
		t.Fatalf("Trigger(nope) = %v, want nil", v)
	}
	if pool.Active("D3") != nil {
		t.Fatalf("unmapped pitch has an active voice")
	}
	if NewPool(nil, 3).Acquire("C3") != nil {
		t.Fatalf("nil bank should yield no voices")
	}
}

func TestTriggerRestartsAtFullVolume(t *testing.T) {
	bank := NewMemory("E3")
	pool := NewPool(bank, 1)
	v := pool.Trigger("E3").(*MemoryVoice)
	v.SetVolume(0.1)
	again := pool.Trigger("E3").(*MemoryVoice)
	if again != v {
		t.Fatalf("pool of one should reuse its voice")
	}
	if v.Volume() != 1 || !v.Playing() {
		t.Fatalf("volume=%v playing=%v, want 1,true", v.Volume(), v.Playing())
	}
	if v.Plays != 2 || v.Pauses != 2 || v.Rewinds != 2 {
		t.Fatalf("plays=%d pauses=%d rewinds=%d, want 2 each", v.Plays, v.Pauses, v.Rewinds)
	}
}

func TestTriggerSwallowsPlayError(t *testing.T) {
	bank := NewMemory("F3")
	bank.PlayErr = errors.New("blocked by host")
	pool := NewPool(bank, 2)
	if v := pool.Trigger("F3"); v == nil {
		t.Fatalf("Trigger should still return the voice")
	}
}

type brokenVoice struct{ MemoryVoice }

func (b *brokenVoice) Clone() (Voice, error) { return nil, errors.New("no clone") }

func TestFailedClonesShrinkPool(t *testing.T) {
	base := &brokenVoice{MemoryVoice{bank: NewMemory(), volume: 1}}
	bank := BankFunc(func(name string) (Voice, bool) { return base, name == "G3" })
	pool := NewPool(bank, 3)
	if v := pool.Acquire("G3"); v != Voice(base) {
		t.Fatalf("Acquire should return the template voice")
	}
	if got := pool.Size("G3"); got != 1 {
		t.Fatalf("Size = %d, want 1", got)
	}
}
