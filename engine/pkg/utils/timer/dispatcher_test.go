package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestDispatcher() (*Dispatcher, *manualClock) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)}
	return NewDispatcher(WithClock(clock.Now), WithPostSize(16)), clock
}

func TestAfterFunc(t *testing.T) {
	d, clock := newTestDispatcher()
	var fired []string
	d.AfterFunc(2*time.Second, "b", func(t inf.ITimer) { fired = append(fired, t.GetName()) })
	d.AfterFunc(time.Second, "a", func(t inf.ITimer) { fired = append(fired, t.GetName()) })

	assert.Equal(t, 0, d.Tick())
	clock.Advance(time.Second)
	assert.Equal(t, 1, d.Tick())
	assert.Equal(t, []string{"a"}, fired)

	clock.Advance(time.Second)
	assert.Equal(t, 1, d.Tick())
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, d.Len())
}

func TestSameFireTimeKeepsOrder(t *testing.T) {
	d, clock := newTestDispatcher()
	var fired []int
	for i := 0; i < 5; i++ {
		i := i
		d.AfterFunc(time.Second, "", func(inf.ITimer) { fired = append(fired, i) })
	}
	clock.Advance(time.Second)
	require.Equal(t, 5, d.Tick())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, fired)
}

func TestCancel(t *testing.T) {
	d, clock := newTestDispatcher()
	called := false
	tm := d.AfterFunc(time.Second, "cancel", func(inf.ITimer) { called = true })
	tm.Cancel()
	assert.False(t, tm.IsActive())

	clock.Advance(time.Second)
	assert.Equal(t, 0, d.Tick())
	assert.False(t, called)
}

func TestTickerFunc(t *testing.T) {
	d, clock := newTestDispatcher()
	count := 0
	d.TickerFunc(time.Second, "ticker", func(t inf.ITimer) {
		count++
		if count == 3 {
			t.Cancel()
		}
	})

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		d.Tick()
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, d.Len())
}

func TestTimerAddedInCallbackWaitsForNextTick(t *testing.T) {
	d, clock := newTestDispatcher()
	inner := false
	d.AfterFunc(0, "outer", func(inf.ITimer) {
		d.AfterFunc(0, "inner", func(inf.ITimer) { inner = true })
	})

	assert.Equal(t, 1, d.Tick())
	assert.False(t, inner)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, d.Tick())
	assert.True(t, inner)
}

func TestPanicRecovered(t *testing.T) {
	d, clock := newTestDispatcher()
	after := false
	d.AfterFunc(time.Second, "panic", func(inf.ITimer) { panic("boom") })
	d.AfterFunc(time.Second, "after", func(inf.ITimer) { after = true })

	clock.Advance(time.Second)
	assert.NotPanics(t, func() { d.Tick() })
	assert.True(t, after)
}

func TestCronFunc(t *testing.T) {
	d, clock := newTestDispatcher()
	count := 0
	tm, err := d.CronFunc("*/10 * * * * *", "cron", func(inf.ITimer) { count++ })
	require.NoError(t, err)
	require.NotNil(t, tm)

	clock.Advance(10 * time.Second)
	d.Tick()
	clock.Advance(10 * time.Second)
	d.Tick()
	assert.Equal(t, 2, count)

	_, err = d.CronFunc("not a spec", "bad", nil)
	assert.True(t, errors.Is(err, def.ErrInvalidCronSpec))
}

func TestPostAndDrain(t *testing.T) {
	d, _ := newTestDispatcher()
	var got []int
	require.NoError(t, d.Post(func() { got = append(got, 1) }))
	require.NoError(t, d.Post(func() { panic("boom") }))
	require.NoError(t, d.Post(func() { got = append(got, 2) }))

	assert.Equal(t, 3, d.Drain())
	assert.Equal(t, []int{1, 2}, got)

	d.Close()
	assert.True(t, d.IsClosed())
	assert.ErrorIs(t, d.Post(func() {}), def.ErrDispatcherClosed)
}

func TestRun(t *testing.T) {
	d := NewDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, time.Millisecond)
		close(done)
	}()

	fired := make(chan struct{})
	require.NoError(t, d.Post(func() {
		d.AfterFunc(time.Millisecond, "run", func(inf.ITimer) { close(fired) })
	}))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer not fired")
	}

	cancel()
	<-done
	assert.True(t, d.IsClosed())
}

func BenchmarkDispatcherTick(b *testing.B) {
	d, clock := newTestDispatcher()
	cb := func(inf.ITimer) {}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.AfterFunc(time.Millisecond, "", cb)
		clock.Advance(time.Millisecond)
		d.Tick()
	}
}
