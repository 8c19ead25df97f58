package envelope

import (
	"testing"
	"time"

	"github.com/cbegin/vpiano-go/internal/clock"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/voice"
)

type recorder struct {
	highlights []string
	releases   []string
	durations  []time.Duration
}

func (r *recorder) Highlight(p pitch.Pitch) { r.highlights = append(r.highlights, p.Name) }
func (r *recorder) Released(p pitch.Pitch, d time.Duration) {
	r.releases = append(r.releases, p.Name)
	r.durations = append(r.durations, d)
}

type fixture struct {
	clk  *clock.Manual
	bank *voice.Memory
	pool *voice.Pool
	rec  *recorder
	ctl  *Controller
}

func newFixture() *fixture {
	f := &fixture{clk: clock.NewManual(), rec: &recorder{}}
	f.bank = voice.NewMemory(pitch.Names(pitch.All())...)
	f.pool = voice.NewPool(f.bank, voice.DefaultPoolSize)
	f.ctl = NewController(f.clk, f.pool, f.rec)
	return f
}

func (f *fixture) settle() { f.clk.Advance(10 * time.Second) }

func TestNextVolumeMonotoneAndTerminates(t *testing.T) {
	for _, start := range []float64{1, 0.95, 0.5, 0.21, 0.2, 0.1, 0.031, 0.03, 0.029, 0.001} {
		v := start
		steps := 0
		for {
			next, done := NextVolume(v)
			if done {
				break
			}
			if next > v {
				t.Fatalf("start %v: volume rose from %v to %v", start, v, next)
			}
			v = next
			steps++
			if steps > 1000 {
				t.Fatalf("start %v: fade did not terminate", start)
			}
		}
	}
}

func TestNextVolumeCurve(t *testing.T) {
	cases := []struct {
		in, want float64
		done     bool
	}{
		{1, 0.95, false},
		{0.5, 0.475, false},
		{0.2, 0.19, false},
		{0.05, 0.04, false},
		{0.02, 0.02, true},
	}
	for _, tc := range cases {
		got, done := NextVolume(tc.in)
		if done != tc.done || (got-tc.want) > 1e-9 || (tc.want-got) > 1e-9 {
			t.Errorf("NextVolume(%v) = %v,%v, want %v,%v", tc.in, got, done, tc.want, tc.done)
		}
	}
	if n := FadeSteps(1); n < 40 || n > 60 {
		t.Errorf("FadeSteps(1) = %d, want roughly 50", n)
	}
}

func TestTriggerThenStopIsSilent(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"A2", "Db3", "C5"} {
		f.ctl.Stop(name)
		if got := f.ctl.State(name); got != Silent {
			t.Fatalf("%s after stop from silent = %v", name, got)
		}
		f.ctl.Trigger(name)
		if got := f.ctl.State(name); got != Sounding {
			t.Fatalf("%s after trigger = %v, want sounding", name, got)
		}
		f.ctl.Stop(name)
		if got := f.ctl.State(name); got != Silent {
			t.Fatalf("%s after stop = %v, want silent", name, got)
		}
		f.ctl.Trigger(name)
		f.ctl.Fade(name)
		f.ctl.Stop(name)
		if got := f.ctl.State(name); got != Silent {
			t.Fatalf("%s after fade+stop = %v, want silent", name, got)
		}
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("pending timers = %d after stops", f.clk.Pending())
	}
}

func TestReleaseFadesToSilence(t *testing.T) {
	f := newFixture()
	f.ctl.Press("C3")
	f.ctl.Release("C3")
	if got := f.ctl.State("C3"); got != Fading {
		t.Fatalf("state = %v, want fading", got)
	}
	v := f.pool.Active("C3").(*voice.MemoryVoice)

	f.clk.Advance(FadeInterval)
	if v.Volume() >= 1 {
		t.Fatalf("volume = %v after one step, want < 1", v.Volume())
	}
	f.settle()
	if got := f.ctl.State("C3"); got != Silent {
		t.Fatalf("state = %v, want silent", got)
	}
	if v.Playing() {
		t.Fatalf("voice still playing after fade")
	}
	if len(f.rec.releases) != 1 || f.rec.releases[0] != "C3" || f.rec.durations[0] != ReleaseDuration {
		t.Fatalf("releases = %v %v", f.rec.releases, f.rec.durations)
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("fade timer still pending")
	}
}

func TestOneFadePerPitch(t *testing.T) {
	f := newFixture()
	f.ctl.Trigger("D3")
	f.ctl.Fade("D3")
	f.ctl.Fade("D3")
	f.ctl.Fade("D3")
	if f.clk.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", f.clk.Pending())
	}
	f.ctl.Trigger("D3")
	if f.clk.Pending() != 0 {
		t.Fatalf("retrigger should cancel the fade, pending = %d", f.clk.Pending())
	}
	if f.ctl.State("D3") != Sounding {
		t.Fatalf("retriggered pitch should be sounding")
	}
}

func TestPressIgnoresRepeat(t *testing.T) {
	f := newFixture()
	f.ctl.Press("E3")
	f.ctl.Press("E3")
	f.ctl.Press("E3")
	if len(f.rec.highlights) != 1 {
		t.Fatalf("highlights = %v, want one", f.rec.highlights)
	}
	if !f.ctl.Depressed("E3") {
		t.Fatalf("E3 should be depressed")
	}
	f.ctl.Release("E3")
	if f.ctl.Depressed("E3") {
		t.Fatalf("E3 should be up")
	}
}

func TestSustainMasksRelease(t *testing.T) {
	f := newFixture()
	f.ctl.SetSustain(true)
	for _, p := range pitch.All() {
		f.ctl.Press(p.Name)
		f.ctl.Release(p.Name)
	}
	f.settle()
	for _, p := range pitch.All() {
		if got := f.ctl.State(p.Name); got != Sounding {
			t.Fatalf("%s = %v while sustaining, want sounding", p.Name, got)
		}
	}
	if len(f.rec.releases) != 0 {
		t.Fatalf("releases while sustaining: %v", f.rec.releases)
	}
}

func TestPedalUpReleasesOnlyUpKeys(t *testing.T) {
	f := newFixture()
	f.ctl.SetSustain(true)
	f.ctl.Press("C3")
	f.ctl.Press("E3")
	f.ctl.Press("G3")
	f.ctl.Release("C3")
	f.ctl.Release("G3")
	f.ctl.SetSustain(false)

	if got := f.ctl.State("C3"); got != Fading {
		t.Fatalf("C3 = %v, want fading", got)
	}
	if got := f.ctl.State("G3"); got != Fading {
		t.Fatalf("G3 = %v, want fading", got)
	}
	if got := f.ctl.State("E3"); got != Sounding {
		t.Fatalf("held E3 = %v, want sounding", got)
	}
	if got := f.ctl.State("A2"); got != Silent {
		t.Fatalf("untouched A2 = %v, want silent", got)
	}
	if f.clk.Pending() != 2 {
		t.Fatalf("pending fades = %d, want 2", f.clk.Pending())
	}
	f.settle()
	if len(f.rec.releases) != 2 {
		t.Fatalf("releases = %v, want C3 and G3", f.rec.releases)
	}
}

func TestKillModeStopsImmediately(t *testing.T) {
	f := newFixture()
	f.ctl.SetReleaseMode(ReleaseKill)
	f.ctl.Press("Bb2")
	f.ctl.Release("Bb2")
	if got := f.ctl.State("Bb2"); got != Silent {
		t.Fatalf("state = %v, want silent", got)
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("kill mode should not schedule a fade")
	}
}

func TestPitchWithoutSampleStopsVisually(t *testing.T) {
	f := &fixture{clk: clock.NewManual(), rec: &recorder{}}
	f.bank = voice.NewMemory("C3")
	f.pool = voice.NewPool(f.bank, 3)
	f.ctl = NewController(f.clk, f.pool, f.rec)

	f.ctl.Press("D3")
	f.ctl.Release("D3")
	if got := f.ctl.State("D3"); got != Silent {
		t.Fatalf("state = %v, want silent", got)
	}
	if len(f.rec.highlights) != 1 || len(f.rec.releases) != 1 {
		t.Fatalf("highlights=%v releases=%v", f.rec.highlights, f.rec.releases)
	}
	if f.clk.Pending() != 0 {
		t.Fatalf("no fade should run without a voice")
	}
}

func TestUnknownPitchIsNoop(t *testing.T) {
	f := newFixture()
	f.ctl.Press("H9")
	f.ctl.Release("H9")
	f.ctl.Fade("H9")
	f.ctl.Stop("H9")
	if len(f.rec.highlights)+len(f.rec.releases) != 0 {
		t.Fatalf("unknown pitch produced events")
	}
	if f.ctl.State("H9") != Silent {
		t.Fatalf("unknown pitch should read as silent")
	}
}

func TestCloseCancelsFades(t *testing.T) {
	f := newFixture()
	f.ctl.Trigger("A3")
	f.ctl.Trigger("B3")
	f.ctl.Fade("A3")
	f.ctl.Fade("B3")
	f.ctl.Close()
	if f.clk.Pending() != 0 {
		t.Fatalf("pending = %d after close", f.clk.Pending())
	}
	for _, v := range f.bank.Voices("A3") {
		if v.Playing() {
			t.Fatalf("voice still playing after close")
		}
	}
}
