package objectpool

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/validate"
	"github.com/patrickmn/go-cache"
)

// Registry 原型到对象池的注册表
//
// 注册表本身可以在多个goroutine中查询和创建对象池,但对象池的操作只能在调度器的goroutine中进行
type Registry struct {
	mu       sync.RWMutex
	pools    map[IPrototype]*Pool
	keywords map[string]*Pool
	table    []*Pool // PoolHandle-1

	scheduler    inf.IScheduler
	logger       log.ILogger
	activeRoot   IContainer
	inactiveRoot IContainer
	warnWindow   time.Duration
	warn         *cache.Cache
}

type Option func(r *Registry)

func WithLogger(logger log.ILogger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithContainers 设置默认的根容器,每个对象池会在下面创建同名子容器
func WithContainers(active, inactive IContainer) Option {
	return func(r *Registry) {
		r.activeRoot = active
		r.inactiveRoot = inactive
	}
}

// WithWarnWindow 同一个对象池超量告警的最小间隔
func WithWarnWindow(d time.Duration) Option {
	return func(r *Registry) {
		r.warnWindow = d
	}
}

func NewRegistry(scheduler inf.IScheduler, opts ...Option) (*Registry, error) {
	if scheduler == nil {
		return nil, def.ErrSchedulerRequired
	}
	r := &Registry{
		pools:      make(map[IPrototype]*Pool),
		keywords:   make(map[string]*Pool),
		scheduler:  scheduler,
		warnWindow: def.DefaultWarnWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.activeRoot == nil {
		r.activeRoot = detached{name: def.DefaultActiveContainer}
	}
	if r.inactiveRoot == nil {
		r.inactiveRoot = detached{name: def.DefaultInactiveContainer}
	}
	r.warn = cache.New(r.warnWindow, r.warnWindow*2)
	return r, nil
}

func checkPrototype(proto IPrototype) error {
	if proto == nil {
		return def.ErrMissingPrototype
	}
	if !reflect.TypeOf(proto).Comparable() {
		return fmt.Errorf("%w: %T", def.ErrPrototypeNotComparable, proto)
	}
	return nil
}

// create 必须持有写锁
func (r *Registry) create(conf PoolConf, explicit bool) *Pool {
	handle := PoolHandle(len(r.table) + 1)
	p := newPool(handle, conf, explicit, r.scheduler, r.logger, r.warn)
	r.table = append(r.table, p)
	r.pools[conf.Prototype] = p
	if old, ok := r.keywords[conf.Keyword]; ok {
		r.logger.Warnf("pool keyword %s already used by pool %d, lookup by keyword keeps the first", conf.Keyword, old.handle)
	} else {
		r.keywords[conf.Keyword] = p
	}
	return p
}

// Resolve 获取原型对应的对象池,不存在时按默认配置创建
func (r *Registry) Resolve(proto IPrototype) (*Pool, error) {
	return r.resolve(proto, nil, nil)
}

func (r *Registry) resolve(proto IPrototype, active, inactive IContainer) (*Pool, error) {
	if err := checkPrototype(proto); err != nil {
		r.logger.Errorf("resolve pool failed: %v", err)
		return nil, err
	}

	r.mu.RLock()
	p, ok := r.pools[proto]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.pools[proto]; ok {
		return p, nil
	}

	if active == nil {
		active = r.activeRoot
	}
	if inactive == nil {
		inactive = r.inactiveRoot
	}
	name := proto.GetName()
	conf := fixPoolConf(&PoolConf{
		Prototype:         proto,
		ActiveContainer:   active.CreateChild(name),
		InactiveContainer: inactive.CreateChild(name),
	}, false)
	p = r.create(conf, false)
	r.logger.Infof("runtime pool %s created", conf.Keyword)
	return p, nil
}

// RegisterExplicit 按配置注册对象池并预加载
func (r *Registry) RegisterExplicit(conf *PoolConf) error {
	p, err := r.register(conf)
	if err != nil {
		return err
	}
	return p.PreloadInstances()
}

// RegisterAll 先注册全部配置,再统一预加载
func (r *Registry) RegisterAll(confs []*PoolConf) error {
	var errs []error
	created := make([]*Pool, 0, len(confs))
	for _, conf := range confs {
		p, err := r.register(conf)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		created = append(created, p)
	}
	for _, p := range created {
		if err := p.PreloadInstances(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) register(conf *PoolConf) (*Pool, error) {
	if conf == nil || conf.Prototype == nil {
		r.logger.Error("pool conf without prototype skipped")
		return nil, def.ErrMissingPrototype
	}
	if err := checkPrototype(conf.Prototype); err != nil {
		r.logger.Errorf("register pool failed: %v", err)
		return nil, err
	}
	if err := validate.Struct(conf); err != nil {
		err = fmt.Errorf("%w: %s: %v", def.ErrInvalidPoolConf, conf.Prototype.GetName(), validate.TransError(err, validate.EN))
		r.logger.Errorf("register pool failed: %v", err)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.pools[conf.Prototype]; ok {
		err := fmt.Errorf("%w: %s already in pool %s", def.ErrDuplicatePrototypeRegistration, conf.Prototype.GetName(), old.conf.Keyword)
		r.logger.Error(err)
		return nil, err
	}

	fixed := fixPoolConf(conf, true)
	if fixed.ActiveContainer == nil {
		fixed.ActiveContainer = r.activeRoot.CreateChild(fixed.Keyword)
	}
	if fixed.InactiveContainer == nil {
		fixed.InactiveContainer = r.inactiveRoot.CreateChild(fixed.Keyword)
	}
	p := r.create(fixed, true)
	r.logger.Infof("pool %s registered, preload %d", fixed.Keyword, fixed.PreloadCount)
	return p, nil
}

// ResolveOwner 根据对象上的标记找到所属对象池
func (r *Registry) ResolveOwner(inst IInstance) (*Pool, error) {
	if inst == nil || inst.PoolTag() == nil {
		return nil, def.ErrReleaseWithoutOwner
	}
	handle := inst.PoolTag().pool
	r.mu.RLock()
	defer r.mu.RUnlock()
	if handle == NoPool || int(handle) > len(r.table) {
		return nil, def.ErrReleaseWithoutOwner
	}
	return r.table[handle-1], nil
}

func (r *Registry) Lookup(proto IPrototype) (*Pool, bool) {
	if checkPrototype(proto) != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[proto]
	return p, ok
}

func (r *Registry) LookupKeyword(keyword string) (*Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.keywords[keyword]
	return p, ok
}

// Pools 按创建顺序返回所有对象池
func (r *Registry) Pools() []*Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pools := make([]*Pool, len(r.table))
	copy(pools, r.table)
	return pools
}

// RuntimePools 运行时自动创建的对象池
func (r *Registry) RuntimePools() []*Pool {
	return r.filter(false)
}

// ExplicitPools 配置注册的对象池
func (r *Registry) ExplicitPools() []*Pool {
	return r.filter(true)
}

func (r *Registry) filter(explicit bool) []*Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pools []*Pool
	for _, p := range r.table {
		if p.explicit == explicit {
			pools = append(pools, p)
		}
	}
	return pools
}

// Stats 所有对象池的统计,可以在任意goroutine中调用
func (r *Registry) Stats() []Stats {
	pools := r.Pools()
	stats := make([]Stats, 0, len(pools))
	for _, p := range pools {
		stats = append(stats, p.Stats())
	}
	return stats
}
