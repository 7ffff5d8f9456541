package objectpool

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/emberpool/engine/pkg/dto"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/panjf2000/ants/v2"
	"github.com/patrickmn/go-cache"
)

// Pool 单个原型的对象池
//
// 除Stats外所有方法都只能在调度器所在的goroutine中调用,对象池内部不加锁
type Pool struct {
	handle    PoolHandle
	conf      PoolConf
	explicit  bool
	scheduler inf.IScheduler
	logger    log.ILogger
	warn      *cache.Cache

	free          []IInstance // 空闲对象,尾部是最近放回的
	inUse         []IInstance
	seq           uint64
	cullingActive bool
	reclaimer     reclaimer

	stats statsRecorder
}

func newPool(handle PoolHandle, conf PoolConf, explicit bool, scheduler inf.IScheduler, logger log.ILogger, warn *cache.Cache) *Pool {
	p := &Pool{
		handle:    handle,
		conf:      conf,
		explicit:  explicit,
		scheduler: scheduler,
		logger:    logger.WithField("pool", conf.Keyword),
		warn:      warn,
	}
	p.reclaimer.pool = p
	return p
}

func (p *Pool) Handle() PoolHandle {
	return p.handle
}

func (p *Pool) Keyword() string {
	return p.conf.Keyword
}

func (p *Pool) Prototype() IPrototype {
	return p.conf.Prototype
}

// Conf 填充默认值之后的配置
func (p *Pool) Conf() PoolConf {
	return p.conf
}

func (p *Pool) IsExplicit() bool {
	return p.explicit
}

func (p *Pool) CountFree() int {
	return len(p.free)
}

func (p *Pool) CountInUse() int {
	return len(p.inUse)
}

func (p *Pool) CountTotal() int {
	return len(p.free) + len(p.inUse)
}

func (p *Pool) IsCullingActive() bool {
	return p.cullingActive
}

func (p *Pool) ReclaimerState() ReclaimerState {
	return p.reclaimer.getState()
}

// Stats 可以在任意goroutine中调用
func (p *Pool) Stats() Stats {
	s := p.stats.snapshot()
	s.Handle = p.handle
	s.Keyword = p.conf.Keyword
	s.Prototype = p.conf.Prototype.GetName()
	s.Explicit = p.explicit
	return s
}

func (p *Pool) syncCounts() {
	p.stats.setCounts(len(p.free), len(p.inUse))
}

// clone 克隆一个新对象并打上归属标记
func (p *Pool) clone(pos dto.Vector3, rot dto.Quaternion) (IInstance, error) {
	inst := p.conf.Prototype.Clone(pos, rot)
	if err := p.adopt(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (p *Pool) adopt(inst IInstance) error {
	if inst == nil || inst.PoolTag() == nil {
		return fmt.Errorf("%w: %s", def.ErrCloneFailed, p.conf.Keyword)
	}
	tag := inst.PoolTag()
	if tag.pool != NoPool {
		return fmt.Errorf("%w: clone of %s already belongs to pool %d", def.ErrForeignInstance, p.conf.Keyword, tag.pool)
	}
	p.seq++
	tag.pool = p.handle
	tag.id = uuid.NewString()
	tag.name = fmt.Sprintf("%s%03d", p.conf.Prototype.GetName(), p.seq)
	tag.slot = -1
	p.stats.created.Add(1)
	return nil
}

func (p *Pool) attach(c IContainer, inst IInstance) {
	tag := inst.PoolTag()
	if tag.parent == c {
		return
	}
	if tag.parent != nil {
		tag.parent.Detach(inst)
	}
	tag.parent = c
	if c != nil {
		c.Attach(inst)
	}
}

func (p *Pool) pushInUse(inst IInstance) {
	tag := inst.PoolTag()
	tag.free = false
	tag.slot = len(p.inUse)
	p.inUse = append(p.inUse, inst)
}

func (p *Pool) removeInUse(tag *Tag) bool {
	idx := tag.slot
	if idx < 0 || idx >= len(p.inUse) || p.inUse[idx].PoolTag() != tag {
		return false
	}
	last := len(p.inUse) - 1
	if idx != last {
		p.inUse[idx] = p.inUse[last]
		p.inUse[idx].PoolTag().slot = idx
	}
	p.inUse[last] = nil
	p.inUse = p.inUse[:last]
	tag.slot = -1
	return true
}

func (p *Pool) pushFree(inst IInstance) {
	inst.PoolTag().free = true
	p.free = append(p.free, inst)
}

// PreloadInstances 预先创建PreloadCount个空闲对象
//
// PreloadWorkers>1时在ants协程池中并发克隆,标记和入池仍然在当前goroutine中按顺序完成
func (p *Pool) PreloadInstances() error {
	count := p.conf.PreloadCount
	if count <= 0 {
		return nil
	}

	clones, err := p.preloadClones(count)
	if err != nil {
		return err
	}

	failed := 0
	for _, inst := range clones {
		if err = p.adopt(inst); err != nil {
			failed++
			continue
		}
		p.pushFree(inst)
		p.attach(p.conf.InactiveContainer, inst)
		inst.SetActive(false)
	}
	p.syncCounts()

	if failed > 0 {
		p.logger.Errorf("preload %d/%d instances failed", failed, count)
		return fmt.Errorf("%w: %d of %d preload clones of %s", def.ErrCloneFailed, failed, count, p.conf.Keyword)
	}
	p.logger.Debugf("preload %d instances", count)
	return nil
}

func (p *Pool) preloadClones(count int) ([]IInstance, error) {
	clones := make([]IInstance, count)
	proto := p.conf.Prototype
	workers := min(p.conf.PreloadWorkers, count)
	if workers <= 1 {
		for i := range clones {
			clones[i] = proto.Clone(dto.Vector3Zero, dto.QuaternionIdentity)
		}
		return clones, nil
	}

	wp, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer wp.Release()

	var wg sync.WaitGroup
	for i := range clones {
		idx := i
		wg.Add(1)
		err = wp.Submit(func() {
			defer wg.Done()
			clones[idx] = proto.Clone(dto.Vector3Zero, dto.QuaternionIdentity)
		})
		if err != nil {
			wg.Done()
			clones[idx] = proto.Clone(dto.Vector3Zero, dto.QuaternionIdentity)
		}
	}
	wg.Wait()
	return clones, nil
}

// Request 取出一个对象,空闲列表为空时克隆新对象
func (p *Pool) Request(pos dto.Vector3, rot dto.Quaternion) (IInstance, error) {
	var inst IInstance
	if n := len(p.free); n > 0 {
		inst = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.pushInUse(inst)
		inst.SetTransform(pos, rot)
		p.stats.reuses.Add(1)
	} else {
		var err error
		if inst, err = p.clone(pos, rot); err != nil {
			p.logger.Errorf("request failed: %v", err)
			return nil, err
		}
		p.pushInUse(inst)
	}

	p.attach(p.conf.ActiveContainer, inst)
	inst.SetActive(true)
	p.stats.requests.Add(1)
	p.syncCounts()
	p.checkWarning()

	// 所有列表操作完成后再回调,回调中可以直接Release
	if h, ok := inst.(inf.IPoolInit); ok {
		h.InitFromPool()
	}
	return inst, nil
}

func (p *Pool) checkWarning() {
	total := p.CountTotal()
	if total <= p.conf.MaxWarningCount {
		return
	}
	if p.warn != nil && p.warn.Add(p.conf.Keyword, struct{}{}, cache.DefaultExpiration) != nil {
		// 告警间隔内已经打印过warn
		p.logger.Debugf("instance count %d still above warning count %d", total, p.conf.MaxWarningCount)
		return
	}
	p.logger.Warnf("instance count %d is over warning count %d", total, p.conf.MaxWarningCount)
}

// Release 放回对象,重复放回直接忽略
func (p *Pool) Release(inst IInstance) error {
	if inst == nil || inst.PoolTag() == nil {
		return def.ErrReleaseWithoutOwner
	}
	tag := inst.PoolTag()
	if tag.pool != p.handle {
		return fmt.Errorf("%w: owner %d, pool %s(%d)", def.ErrForeignInstance, tag.pool, p.conf.Keyword, p.handle)
	}
	if tag.free {
		return nil
	}

	if !tag.releasing {
		if h, ok := inst.(inf.IPoolRelease); ok {
			deactivate(tag, h)
			if tag.free {
				// 回调中已经放回
				return nil
			}
		}
	}

	if !p.removeInUse(tag) {
		return fmt.Errorf("%w: %s", def.ErrInstanceNotInUse, tag.name)
	}
	p.pushFree(inst)
	p.attach(p.conf.InactiveContainer, inst)
	inst.SetActive(false)
	p.stats.releases.Add(1)
	p.syncCounts()

	p.tryStartCull()
	return nil
}

// deactivate 回调panic时也要清除标记,否则之后的放回会跳过回调
func deactivate(tag *Tag, h inf.IPoolRelease) {
	tag.releasing = true
	defer func() {
		tag.releasing = false
	}()
	h.DeactivateBeforeRelease()
}

func (p *Pool) tryStartCull() {
	if !p.conf.CullEnabled || p.cullingActive || p.CountTotal() <= p.conf.CullThreshold {
		return
	}
	p.cullingActive = true
	p.stats.culling.Store(true)
	p.reclaimer.start()
}

// cullPass 从空闲列表头部(最早放回的)开始销毁,返回销毁数量
func (p *Pool) cullPass() int {
	n := 0
	for n < len(p.free) && n < p.conf.CullBatchLimit && p.CountTotal()-n > p.conf.CullThreshold {
		inst := p.free[n]
		tag := inst.PoolTag()
		if tag.parent != nil {
			tag.parent.Detach(inst)
			tag.parent = nil
		}
		inst.Destroy()
		n++
	}
	if n > 0 {
		p.free = slices.Delete(p.free, 0, n)
		p.stats.destroyed.Add(int64(n))
		p.syncCounts()
	}
	return n
}

func (p *Pool) stopCulling() {
	p.cullingActive = false
	p.stats.culling.Store(false)
}
