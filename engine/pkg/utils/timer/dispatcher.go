package timer

import (
	"container/heap"
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Dispatcher one dispatcher per goroutine
//
// 定时器可以在任意goroutine中添加,但回调只会在调用Tick/Run的goroutine中执行,
// 其他goroutine需要操作主循环数据时通过Post投递
type Dispatcher struct {
	mu     sync.Mutex
	timers timerHeap
	seq    uint64
	due    []*Timer

	now       func() time.Time
	posts     chan func()
	closed    chan struct{}
	closeOnce sync.Once
	logger    log.ILogger
}

type Option func(d *Dispatcher)

// WithClock 替换时间源,测试中用来手动推进时间
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func WithPostSize(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.posts = make(chan func(), size)
		}
	}
}

func WithLogger(logger log.ILogger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		now:    time.Now,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.posts == nil {
		d.posts = make(chan func(), def.DefaultPostSize)
	}
	if d.logger == nil {
		d.logger = log.Default()
	}
	heap.Init(&d.timers)
	return d
}

func (d *Dispatcher) Now() time.Time {
	return d.now()
}

func (d *Dispatcher) setup(t *Timer) *Timer {
	t.index = -1
	d.mu.Lock() // 使用锁规避竞争条件
	d.seq++
	t.id = d.seq
	heap.Push(&d.timers, t)
	d.mu.Unlock()
	return t
}

// AfterFunc 延时d后执行一次cb
func (d *Dispatcher) AfterFunc(dur time.Duration, name string, cb func(t inf.ITimer)) inf.ITimer {
	return d.setup(&Timer{
		name:     name,
		fireTime: d.now().Add(dur),
		cb:       cb,
	})
}

// TickerFunc 每隔dur执行一次cb,直到取消
func (d *Dispatcher) TickerFunc(dur time.Duration, name string, cb func(t inf.ITimer)) inf.ITimer {
	if dur <= 0 {
		dur = def.DefaultTickInterval
	}
	return d.setup(&Timer{
		name:     name,
		fireTime: d.now().Add(dur),
		interval: dur,
		cb:       cb,
	})
}

// CronFunc 按cron表达式执行cb,支持秒级(6段)和标准(5段)表达式
func (d *Dispatcher) CronFunc(spec string, name string, cb func(t inf.ITimer)) (inf.ITimer, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", def.ErrInvalidCronSpec, spec, err)
	}
	next := schedule.Next(d.now())
	if next.IsZero() {
		return nil, fmt.Errorf("%w: %s never fires", def.ErrInvalidCronSpec, spec)
	}
	return d.setup(&Timer{
		name:     name,
		fireTime: next,
		schedule: schedule,
		cb:       cb,
	}), nil
}

// Len 当前heap中的定时器数量(包含已取消但还未到期的)
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timers.Len()
}

// Tick 执行所有到期的定时器,返回执行的回调数量
//
// 回调中新加入的定时器即使已经到期也要等下一次Tick
func (d *Dispatcher) Tick() int {
	now := d.now()
	d.mu.Lock()
	for d.timers.Len() > 0 && !d.timers[0].fireTime.After(now) {
		d.due = append(d.due, heap.Pop(&d.timers).(*Timer))
	}
	d.mu.Unlock()

	fired := 0
	for i, t := range d.due {
		d.due[i] = nil
		if !t.IsActive() {
			continue
		}
		t.do(d)
		fired++

		if t.isRepeat() && t.IsActive() && t.next(now) {
			d.mu.Lock()
			heap.Push(&d.timers, t)
			d.mu.Unlock()
		}
	}
	d.due = d.due[:0]
	return fired
}

// Post 把fn投递到主循环执行,调度器关闭后返回错误
func (d *Dispatcher) Post(fn func()) error {
	select {
	case <-d.closed:
		return def.ErrDispatcherClosed
	default:
	}

	select {
	case <-d.closed:
		return def.ErrDispatcherClosed
	case d.posts <- fn:
		return nil
	}
}

// Drain 执行所有已经投递的函数,返回执行数量
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		select {
		case fn := <-d.posts:
			d.runPost(fn)
			n++
		default:
			return n
		}
	}
}

func (d *Dispatcher) runPost(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("dispatcher post func err: %v\ntrace: %s", r, debug.Stack())
		}
	}()
	fn()
}

// Run 主循环,阻塞直到ctx结束
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = def.DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Close()
			d.Drain()
			return
		case <-ticker.C:
			d.Tick()
		case fn := <-d.posts:
			d.runPost(fn)
		}
	}
}

func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
	})
}

func (d *Dispatcher) IsClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}
