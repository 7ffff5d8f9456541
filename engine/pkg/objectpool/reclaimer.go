package objectpool

import (
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
)

// ReclaimerState 空闲回收状态
type ReclaimerState int32

const (
	ReclaimerIdle                 ReclaimerState = iota // 空闲
	ReclaimerWaitingInitialDelay                        // 等待首轮回收
	ReclaimerCullingPass                                // 正在回收
	ReclaimerWaitingBetweenPasses                       // 等待下一轮回收
)

func (s ReclaimerState) String() string {
	switch s {
	case ReclaimerIdle:
		return "idle"
	case ReclaimerWaitingInitialDelay:
		return "waiting_initial_delay"
	case ReclaimerCullingPass:
		return "culling_pass"
	case ReclaimerWaitingBetweenPasses:
		return "waiting_between_passes"
	default:
		return "unknown"
	}
}

// reclaimer 超出阈值后分批销毁空闲对象,回收结束前不会被重复触发
//
//	Idle -> WaitingInitialDelay -> CullingPass -> WaitingBetweenPasses -> CullingPass ... -> Idle
type reclaimer struct {
	pool  *Pool
	state ReclaimerState
	timer inf.ITimer
	pass  int
}

func (r *reclaimer) getState() ReclaimerState {
	return r.state
}

func (r *reclaimer) setState(s ReclaimerState) {
	r.state = s
	r.pool.stats.state.Store(int32(s))
}

func (r *reclaimer) timerName() string {
	return "objectpool.cull." + r.pool.conf.Keyword
}

func (r *reclaimer) start() {
	if r.state != ReclaimerIdle {
		return
	}
	r.pass = 0
	r.setState(ReclaimerWaitingInitialDelay)
	r.timer = r.pool.scheduler.AfterFunc(r.pool.conf.CullIdleDelay, r.timerName(), r.onTimer)
}

func (r *reclaimer) onTimer(inf.ITimer) {
	r.timer = nil
	r.setState(ReclaimerCullingPass)
	r.pass++

	p := r.pool
	destroyed := p.cullPass()
	p.logger.Debugf("cull pass %d destroyed %d, total %d", r.pass, destroyed, p.CountTotal())

	if p.CountTotal() > p.conf.CullThreshold {
		// 空闲对象不够销毁时也继续等待,直到有对象放回
		r.setState(ReclaimerWaitingBetweenPasses)
		r.timer = p.scheduler.AfterFunc(p.conf.CullPassInterval, r.timerName(), r.onTimer)
		return
	}

	r.setState(ReclaimerIdle)
	p.stopCulling()
}
