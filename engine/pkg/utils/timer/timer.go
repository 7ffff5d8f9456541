// Package timer
// @Title  定时器
// @Description  单goroutine定时调度,所有回调都在调用Tick/Run的goroutine中执行
// @Author  yr  2024/11/14
// @Update  yr  2026/10/16
package timer

import (
	"reflect"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/robfig/cron/v3"
)

// Timer 定时器
type Timer struct {
	id        uint64
	name      string
	cancelled int32         // 是否取消
	fireTime  time.Time     // 触发时间
	interval  time.Duration // 时间间隔(>0 表示循环定时器)
	schedule  cron.Schedule // cron定时器
	cb        func(t inf.ITimer)
	index     int // heap中的位置,-1表示不在heap中
}

func (t *Timer) GetTimerId() uint64 {
	return t.id
}

func (t *Timer) GetName() string {
	if t.name != "" {
		return t.name
	}
	if t.cb != nil {
		return runtime.FuncForPC(reflect.ValueOf(t.cb).Pointer()).Name()
	}
	return ""
}

func (t *Timer) GetFireTime() time.Time {
	return t.fireTime
}

func (t *Timer) GetInterval() time.Duration {
	return t.interval
}

// Cancel 取消定时器,已经在执行中的回调不受影响
func (t *Timer) Cancel() {
	atomic.StoreInt32(&t.cancelled, 1)
}

// IsActive 判断定时器是否已经取消
func (t *Timer) IsActive() bool {
	return atomic.LoadInt32(&t.cancelled) == 0
}

func (t *Timer) isRepeat() bool {
	return t.interval > 0 || t.schedule != nil
}

// next 计算循环定时器的下次触发时间,返回false表示不再触发
func (t *Timer) next(now time.Time) bool {
	if t.interval > 0 {
		t.fireTime = now.Add(t.interval)
		return true
	}
	if t.schedule != nil {
		t.fireTime = t.schedule.Next(now)
		return !t.fireTime.IsZero()
	}
	return false
}

func (t *Timer) do(d *Dispatcher) {
	defer func() {
		if r := recover(); r != nil {
			// 纪录日志
			d.logger.Errorf("timer[%s] do err: %v\ntrace: %s", t.GetName(), r, debug.Stack())
		}
	}()

	if t.cb != nil {
		t.cb(t)
	}
}

type timerHeap []*Timer

func (h timerHeap) Len() int {
	return len(h)
}

func (h timerHeap) Less(i, j int) bool {
	if h[i].fireTime.Equal(h[j].fireTime) {
		// 同一时刻按创建顺序触发
		return h[i].id < h[j].id
	}
	return h[i].fireTime.Before(h[j].fireTime)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() (ret interface{}) {
	old := *h
	l := len(old)
	t := old[l-1]
	old[l-1] = nil
	t.index = -1
	*h = old[:l-1]
	return t
}
