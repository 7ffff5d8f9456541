package objectpool

import (
	"io"
	"testing"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/dto"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/timer"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

type testEnv struct {
	reg    *Registry
	disp   *timer.Dispatcher
	clock  *manualClock
	active *stubContainer
	idle   *stubContainer
}

// advance 推进时间并执行到期的定时器
func (e *testEnv) advance(d time.Duration) {
	e.clock.now = e.clock.now.Add(d)
	e.disp.Tick()
}

func newTestEnv(t testing.TB, opts ...Option) *testEnv {
	t.Helper()
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)}
	logger := log.New(log.WithOut(io.Discard))
	disp := timer.NewDispatcher(timer.WithClock(clock.Now), timer.WithLogger(logger))
	env := &testEnv{
		disp:   disp,
		clock:  clock,
		active: newStubContainer("Active"),
		idle:   newStubContainer("Inactive"),
	}
	opts = append([]Option{WithLogger(logger), WithContainers(env.active, env.idle)}, opts...)
	reg, err := NewRegistry(disp, opts...)
	require.NoError(t, err)
	env.reg = reg
	return env
}

type stubContainer struct {
	name     string
	children map[string]*stubContainer
	attached map[*Tag]IInstance
}

func newStubContainer(name string) *stubContainer {
	return &stubContainer{
		name:     name,
		children: map[string]*stubContainer{},
		attached: map[*Tag]IInstance{},
	}
}

func (c *stubContainer) GetName() string {
	return c.name
}

func (c *stubContainer) Attach(inst IInstance) {
	c.attached[inst.PoolTag()] = inst
}

func (c *stubContainer) Detach(inst IInstance) {
	delete(c.attached, inst.PoolTag())
}

func (c *stubContainer) CreateChild(name string) IContainer {
	child := newStubContainer(name)
	c.children[name] = child
	return child
}

func (c *stubContainer) child(name string) *stubContainer {
	return c.children[name]
}

type bullet struct {
	Object
	inits    int
	deinits  int
	onInit   func(b *bullet)
	onDeinit func(b *bullet)
}

func (b *bullet) InitFromPool() {
	b.inits++
	if b.onInit != nil {
		b.onInit(b)
	}
}

func (b *bullet) DeactivateBeforeRelease() {
	b.deinits++
	if b.onDeinit != nil {
		b.onDeinit(b)
	}
}

func newBulletProto(name string) *Prototype {
	return NewPrototype(name, func() IInstance { return &bullet{} })
}

// spark 没有实现任何回调
type spark struct {
	Object
}

func newSparkProto(name string) *Prototype {
	return NewPrototype(name, func() IInstance { return &spark{} })
}

// valueProto 值类型原型,包含切片不能作为map key
type valueProto struct {
	names []string
}

func (v valueProto) GetName() string {
	return "value"
}

func (v valueProto) Clone(_ dto.Vector3, _ dto.Quaternion) IInstance {
	return &spark{}
}

// checkInvariants 校验空闲和使用列表互斥且和标记一致
func checkInvariants(t *testing.T, p *Pool) {
	t.Helper()
	seen := map[*Tag]bool{}
	for _, inst := range p.free {
		tag := inst.PoolTag()
		require.False(t, seen[tag], "instance %s listed twice", tag.name)
		seen[tag] = true
		require.True(t, tag.free)
		require.Equal(t, p.handle, tag.pool)
	}
	for i, inst := range p.inUse {
		tag := inst.PoolTag()
		require.False(t, seen[tag], "instance %s in both sets", tag.name)
		seen[tag] = true
		require.False(t, tag.free)
		require.Equal(t, i, tag.slot)
		require.Equal(t, p.handle, tag.pool)
	}
	require.Equal(t, p.CountTotal(), len(seen))
	s := p.Stats()
	require.Equal(t, int64(p.CountFree()), s.CountFree)
	require.Equal(t, int64(p.CountInUse()), s.CountInUse)
}
