package timeline

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/epoch"
	"github.com/llehouerou/graphtime/internal/settings"
	"github.com/llehouerou/graphtime/internal/speed"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func progress(pos float64, playing bool, cutoff int64) bus.Progress {
	return bus.Progress{Position: pos, Playing: playing, Cutoff: epoch.At(cutoff)}
}

type fixture struct {
	broker   *bus.Broker
	renderer *MockRenderer
	clock    *fakeClock
	store    *settings.Memory
	ctrl     *Controller
}

func newFixture(t *testing.T, id bus.InstanceID) *fixture {
	t.Helper()
	f := &fixture{
		broker:   bus.NewBroker(),
		renderer: NewMockRenderer(),
		clock:    newFakeClock(),
		store:    settings.NewMemory(),
	}
	f.ctrl = f.newController(id)
	if err := f.ctrl.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return f
}

func (f *fixture) newController(id bus.InstanceID) *Controller {
	return New(Options{
		ID:         id,
		Broker:     f.broker,
		Renderer:   f.renderer,
		Settings:   f.store,
		StorageKey: "graph-" + string(id),
		Speeds:     speed.Cycle{1, 2, 4},
		Location:   time.UTC,
		Clock:      f.clock.Now,
	})
}

func TestController_InitialState(t *testing.T) {
	f := newFixture(t, "a")
	s := f.ctrl.State()

	if s.Playing || s.Position != 0 || s.Speed != 1 {
		t.Errorf("initial state = %+v, want paused at 0 with speed 1", s)
	}
	if s.Raw.Valid || s.Committed.Valid {
		t.Errorf("cutoffs should be unset, got raw=%v committed=%v", s.Raw, s.Committed)
	}
	if f.ctrl.Label() != "" {
		t.Errorf("Label() = %q, want empty", f.ctrl.Label())
	}
}

func TestController_Play_StartsRendererAtSpeed(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.Play()

	if !f.ctrl.State().Playing {
		t.Error("Playing = false after Play")
	}
	if got := f.renderer.StartCalls(); !slices.Equal(got, []float64{1}) {
		t.Errorf("StartCalls() = %v, want [1]", got)
	}

	f.ctrl.Play()
	if got := len(f.renderer.StartCalls()); got != 1 {
		t.Errorf("Play while playing called renderer again: %d calls", got)
	}
}

func TestController_Pause_CommitsRawImmediately(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Play()

	f.broker.Publish("a", progress(0.1, true, 1000))
	f.clock.Advance(50 * time.Millisecond)
	f.broker.Publish("a", progress(0.15, true, 1005))

	if got := f.ctrl.State().Committed; got != epoch.At(1000) {
		t.Fatalf("Committed before pause = %v, want 1000 (throttled)", got)
	}

	f.ctrl.Pause()

	s := f.ctrl.State()
	if s.Committed != epoch.At(1005) {
		t.Errorf("Committed after pause = %v, want 1005", s.Committed)
	}
	if s.Committed != s.Raw {
		t.Errorf("Committed %v != Raw %v after pause", s.Committed, s.Raw)
	}
	if s.Playing {
		t.Error("Playing = true after Pause")
	}
	if f.renderer.PauseCalls() != 1 {
		t.Errorf("PauseCalls() = %d, want 1", f.renderer.PauseCalls())
	}
}

func TestController_Pause_WhenPaused_SkipsRenderer(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.Pause()

	if f.renderer.PauseCalls() != 0 {
		t.Errorf("PauseCalls() = %d, want 0", f.renderer.PauseCalls())
	}
}

func TestController_TogglePlay(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.TogglePlay()
	if !f.ctrl.State().Playing {
		t.Fatal("first toggle should play")
	}
	f.ctrl.TogglePlay()
	if f.ctrl.State().Playing {
		t.Fatal("second toggle should pause")
	}
	if len(f.renderer.StartCalls()) != 1 || f.renderer.PauseCalls() != 1 {
		t.Errorf("start=%v pause=%d, want one each", f.renderer.StartCalls(), f.renderer.PauseCalls())
	}
}

func TestController_CycleSpeed(t *testing.T) {
	f := newFixture(t, "a")

	if got := f.ctrl.CycleSpeed(); got != 2 {
		t.Errorf("CycleSpeed() = %v, want 2", got)
	}
	if len(f.renderer.StartCalls()) != 0 {
		t.Error("speed change while paused must not start the renderer")
	}

	f.ctrl.Play()
	f.ctrl.CycleSpeed()
	f.ctrl.CycleSpeed()

	if got := f.renderer.StartCalls(); !slices.Equal(got, []float64{2, 4, 1}) {
		t.Errorf("StartCalls() = %v, want [2 4 1]", got)
	}
	if f.renderer.PauseCalls() != 0 {
		t.Error("speed change while playing must not pause")
	}
	if f.ctrl.State().Speed != 1 {
		t.Errorf("Speed = %v, want 1 after wrap", f.ctrl.State().Speed)
	}
}

func TestController_SeekMove_WhilePausedForwards(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.SeekMove(0.42)

	if got := f.renderer.SeekCalls(); !slices.Equal(got, []float64{0.42}) {
		t.Errorf("SeekCalls() = %v, want [0.42]", got)
	}
	if len(f.renderer.StartCalls()) != 0 {
		t.Error("seek must not require or trigger Play")
	}
}

func TestController_Seek_ForwardsEveryMoveUncoalesced(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Play()

	f.ctrl.SeekMove(0.1)
	f.ctrl.SeekMove(0.1)
	f.ctrl.SeekMove(0.2)
	f.ctrl.SeekEnd(0.25)

	if got := f.renderer.SeekCalls(); !slices.Equal(got, []float64{0.1, 0.1, 0.2, 0.25}) {
		t.Errorf("SeekCalls() = %v", got)
	}
}

func TestController_Seek_ClampsAndIgnoresNaN(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.SeekMove(-0.5)
	f.ctrl.SeekEnd(1.5)
	f.ctrl.SeekMove(math.NaN())

	if got := f.renderer.SeekCalls(); !slices.Equal(got, []float64{0, 1}) {
		t.Errorf("SeekCalls() = %v, want [0 1]", got)
	}
}

func TestController_Complete_CommitsAndPauses(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Play()
	f.broker.Publish("a", progress(0.9, true, 2000))
	f.clock.Advance(10 * time.Millisecond)
	f.broker.Publish("a", progress(0.99, true, 2099))

	f.broker.Publish("a", bus.Complete{})

	s := f.ctrl.State()
	if s.Playing {
		t.Error("Playing = true after complete")
	}
	if s.Committed != epoch.At(2099) || s.Committed != s.Raw {
		t.Errorf("Committed = %v, Raw = %v, want both 2099", s.Committed, s.Raw)
	}
	if f.ctrl.Completions() != 1 {
		t.Errorf("Completions() = %d, want 1", f.ctrl.Completions())
	}
}

func TestController_Progress_UpdatesPositionEveryEvent(t *testing.T) {
	f := newFixture(t, "a")

	f.broker.Publish("a", progress(0.1, true, 1000))
	f.clock.Advance(time.Millisecond)
	f.broker.Publish("a", progress(0.2, true, 1001))

	s := f.ctrl.State()
	if s.Position != 0.2 {
		t.Errorf("Position = %v, want 0.2 (not throttled)", s.Position)
	}
	if !s.Playing {
		t.Error("Playing should follow the event")
	}
	if s.Raw != epoch.At(1001) || s.Committed != epoch.At(1000) {
		t.Errorf("Raw=%v Committed=%v, want 1001/1000", s.Raw, s.Committed)
	}
}

func TestController_Progress_ThrottlesCommits(t *testing.T) {
	f := newFixture(t, "a")
	changes := 0
	last := f.ctrl.State().Committed
	var windowStart time.Time

	for i := range 60 {
		f.broker.Publish("a", progress(float64(i)/100, true, int64(1000+i)))
		if c := f.ctrl.State().Committed; c != last {
			if changes > 0 && f.clock.Now().Sub(windowStart) < 300*time.Millisecond {
				t.Fatalf("committed changed twice within one window at event %d", i)
			}
			windowStart = f.clock.Now()
			changes++
			last = c
		}
		f.clock.Advance(20 * time.Millisecond)
	}

	if changes < 2 {
		t.Errorf("only %d commits over 1.2s of events", changes)
	}
}

func TestController_Progress_NotPlayingCommits(t *testing.T) {
	f := newFixture(t, "a")
	f.broker.Publish("a", progress(0.1, true, 1000))
	f.clock.Advance(time.Millisecond)

	f.broker.Publish("a", progress(0.4, false, 1040))

	if got := f.ctrl.State().Committed; got != epoch.At(1040) {
		t.Errorf("Committed = %v, want 1040", got)
	}
}

func TestController_Progress_MalformedFieldsIgnored(t *testing.T) {
	f := newFixture(t, "a")
	f.broker.Publish("a", progress(0.3, false, 1000))

	f.broker.Publish("a", bus.Progress{Position: math.NaN(), Playing: false, Cutoff: epoch.Unset})
	f.broker.Publish("a", bus.Progress{Position: 7, Playing: false})

	s := f.ctrl.State()
	if s.Position != 0.3 {
		t.Errorf("Position = %v, want 0.3 (malformed positions ignored)", s.Position)
	}
	if s.Raw != epoch.At(1000) || s.Committed != epoch.At(1000) {
		t.Errorf("cutoffs changed by malformed payload: raw=%v committed=%v", s.Raw, s.Committed)
	}
}

func TestController_SettleAndPendingCommit(t *testing.T) {
	f := newFixture(t, "a")
	f.broker.Publish("a", progress(0.1, true, 1000))
	f.clock.Advance(100 * time.Millisecond)
	f.broker.Publish("a", progress(0.2, true, 1010))

	d, ok := f.ctrl.PendingCommit()
	if !ok || d != 200*time.Millisecond {
		t.Fatalf("PendingCommit() = %v, %v; want 200ms, true", d, ok)
	}
	if f.ctrl.Settle() {
		t.Error("Settle() committed before the window elapsed")
	}

	f.clock.Advance(d)
	if !f.ctrl.Settle() {
		t.Fatal("Settle() did not commit after the window")
	}
	if got := f.ctrl.State().Committed; got != epoch.At(1010) {
		t.Errorf("Committed = %v, want 1010", got)
	}
	if _, ok := f.ctrl.PendingCommit(); ok {
		t.Error("PendingCommit() still true after settle")
	}
}

func TestController_Label(t *testing.T) {
	f := newFixture(t, "a")
	cutoff := time.Date(2021, 3, 3, 12, 0, 0, 0, time.UTC).Unix()

	f.broker.Publish("a", progress(0.5, false, cutoff))

	if got := f.ctrl.Label(); got != "Mar 3rd, 2021" {
		t.Errorf("Label() = %q", got)
	}
}

func TestController_Unmount_UnsubscribesAndResetsOnce(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Play()
	f.broker.Publish("a", progress(0.5, true, 1000))

	f.ctrl.Unmount()
	f.ctrl.Unmount()

	if got := f.broker.Count("a"); got != 0 {
		t.Errorf("broker.Count(a) = %d, want 0", got)
	}
	if f.renderer.ResetCalls() != 1 {
		t.Errorf("ResetCalls() = %d, want 1", f.renderer.ResetCalls())
	}
	if f.ctrl.Mounted() {
		t.Error("Mounted() = true after Unmount")
	}

	f.broker.Publish("a", progress(0.9, true, 5000))
	f.broker.Publish("a", bus.Complete{})
	s := f.ctrl.State()
	if s.Position != 0 || s.Raw.Valid || s.Playing {
		t.Errorf("detached controller received events: %+v", s)
	}
}

func TestController_Unmount_WhilePausedStillResets(t *testing.T) {
	f := newFixture(t, "a")

	f.ctrl.Unmount()

	if f.renderer.ResetCalls() != 1 {
		t.Errorf("ResetCalls() = %d, want 1", f.renderer.ResetCalls())
	}
}

func TestController_Unmount_DetachesRenderer(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Unmount()

	f.ctrl.Play()
	f.ctrl.CycleSpeed()
	f.ctrl.SeekMove(0.5)
	f.ctrl.SeekEnd(0.6)
	f.ctrl.Pause()

	if calls := f.renderer.StartCalls(); len(calls) != 0 {
		t.Errorf("StartCalls() = %v after Unmount, want none", calls)
	}
	if calls := f.renderer.SeekCalls(); len(calls) != 0 {
		t.Errorf("SeekCalls() = %v after Unmount, want none", calls)
	}
	if f.renderer.PauseCalls() != 0 || f.renderer.ResetCalls() != 1 {
		t.Errorf("PauseCalls() = %d, ResetCalls() = %d, want 0 and 1",
			f.renderer.PauseCalls(), f.renderer.ResetCalls())
	}

	if err := f.ctrl.Mount(); err != nil {
		t.Fatalf("remount error = %v", err)
	}
	f.ctrl.Play()
	if calls := f.renderer.StartCalls(); len(calls) != 1 {
		t.Errorf("StartCalls() = %v after remount, want one", calls)
	}
}

func TestController_CommandsBeforeMount_SkipRenderer(t *testing.T) {
	f := newFixture(t, "a")
	c := f.newController("b")

	c.Play()
	c.SeekMove(0.3)
	if len(f.renderer.StartCalls())+len(f.renderer.SeekCalls()) != 0 {
		t.Error("unmounted controller reached the renderer")
	}
}

func TestController_Unmount_DropsQueuedEvents(t *testing.T) {
	var queue []func()
	f := newFixture(t, "a")
	f.broker.SetDispatcher(func(fn func()) { queue = append(queue, fn) })

	f.broker.Publish("a", progress(0.7, true, 3000))
	f.ctrl.Unmount()
	for _, fn := range queue {
		fn()
	}

	if f.ctrl.State().Raw.Valid {
		t.Error("event queued before unmount reached the controller")
	}
}

func TestController_Remount_FreshSubscription(t *testing.T) {
	f := newFixture(t, "a")
	f.broker.Publish("a", progress(0.5, false, 1000))
	f.ctrl.Unmount()

	if err := f.ctrl.Mount(); err != nil {
		t.Fatalf("remount error = %v", err)
	}
	if got := f.broker.Count("a"); got != 3 {
		t.Errorf("Count(a) = %d after remount, want 3", got)
	}
	if f.ctrl.State().Raw.Valid {
		t.Error("state survived unmount")
	}

	f.broker.Publish("a", progress(0.2, false, 2000))
	if got := f.ctrl.State().Committed; got != epoch.At(2000) {
		t.Errorf("Committed = %v after remount, want 2000", got)
	}
}

func TestController_Mount_Twice_NoOp(t *testing.T) {
	f := newFixture(t, "a")

	if err := f.ctrl.Mount(); err != nil {
		t.Fatalf("second Mount() error = %v", err)
	}
	if got := f.broker.Count("a"); got != 3 {
		t.Errorf("Count(a) = %d, want 3", got)
	}
}

func TestController_Mount_DuplicateInstanceFails(t *testing.T) {
	f := newFixture(t, "a")
	other := f.newController("a")

	if err := other.Mount(); err == nil {
		t.Fatal("mounting a second controller with the same id should fail")
	}
}

func TestController_Mount_NoBroker(t *testing.T) {
	c := New(Options{ID: "x"})
	if err := c.Mount(); err == nil {
		t.Error("Mount() without broker should fail")
	}
}

func TestController_Instances_NoCrossTalk(t *testing.T) {
	f := newFixture(t, "a")
	rb := NewMockRenderer()
	b := New(Options{ID: "b", Broker: f.broker, Renderer: rb, Clock: f.clock.Now})
	if err := b.Mount(); err != nil {
		t.Fatal(err)
	}

	f.broker.Publish("a", progress(0.6, true, 1234))
	f.broker.Publish("a", bus.Complete{})
	_ = f.store.Set("graph-a", settings.Display{TimelineVisible: false})
	f.broker.Publish("a", bus.SettingsChanged{})

	sb := b.State()
	if sb.Position != 0 || sb.Raw.Valid || sb.Playing || b.Completions() != 0 {
		t.Errorf("instance b changed by events for a: %+v", sb)
	}
	if !b.Visible() {
		t.Error("instance b visibility changed by a's settings event")
	}
	if f.ctrl.State().Position != 0.6 || f.ctrl.Visible() {
		t.Error("instance a did not receive its own events")
	}

	f.ctrl.Unmount()
	if got := f.broker.Count("b"); got != 3 {
		t.Errorf("unmounting a removed b's listeners: Count(b) = %d", got)
	}
	if rb.ResetCalls() != 0 {
		t.Error("unmounting a reset b's renderer")
	}
}

func TestController_SettingsChanged_RereadsWithoutTouchingPlayback(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Play()
	f.broker.Publish("a", progress(0.3, true, 1000))
	before := f.ctrl.State()

	if !f.ctrl.Visible() {
		t.Fatal("default settings should be visible")
	}
	_ = f.store.Set("graph-a", settings.Display{TimelineVisible: false})
	if !f.ctrl.Visible() {
		t.Fatal("visibility must only change on the settings-changed event")
	}

	f.broker.Publish("a", bus.SettingsChanged{})

	if f.ctrl.Visible() {
		t.Error("Visible() = true after settings changed to hidden")
	}
	if f.ctrl.State() != before {
		t.Errorf("settings change mutated playback state: %+v -> %+v", before, f.ctrl.State())
	}
}

func TestController_Mount_ReadsSettings(t *testing.T) {
	f := newFixture(t, "a")
	_ = f.store.Set("graph-c", settings.Display{TimelineVisible: false})
	c := f.newController("c")

	if !c.Visible() {
		t.Error("unmounted controller should default to visible")
	}
	if err := c.Mount(); err != nil {
		t.Fatal(err)
	}
	if c.Visible() {
		t.Error("Mount() did not read hidden setting")
	}
}

func TestController_DetachedRenderer_CallsSkipped(t *testing.T) {
	f := newFixture(t, "a")
	f.ctrl.Detach()

	f.ctrl.Play()
	f.ctrl.CycleSpeed()
	f.ctrl.SeekMove(0.5)
	f.ctrl.Pause()
	f.ctrl.Unmount()

	if len(f.renderer.StartCalls())+len(f.renderer.SeekCalls())+f.renderer.PauseCalls()+f.renderer.ResetCalls() != 0 {
		t.Error("detached renderer received calls")
	}

	f.ctrl.Attach(f.renderer)
	_ = f.ctrl.Mount()
	f.ctrl.Play()
	if len(f.renderer.StartCalls()) != 1 {
		t.Error("re-attached renderer did not receive Play")
	}
}
