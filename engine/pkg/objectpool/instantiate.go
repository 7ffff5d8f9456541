package objectpool

import (
	"fmt"
	"reflect"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/emberpool/engine/pkg/dto"
	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
)

// Instantiate 从原型对应的对象池中取出一个对象,对象池不存在时自动创建
func (r *Registry) Instantiate(proto IPrototype, pos dto.Vector3, rot dto.Quaternion) (IInstance, error) {
	p, err := r.resolve(proto, nil, nil)
	if err != nil {
		return nil, err
	}
	return p.Request(pos, rot)
}

// InstantiateWithParents 同Instantiate,对象池不存在时使用active/inactive作为新对象池的父容器
//
// 对象池已经存在时忽略传入的容器
func (r *Registry) InstantiateWithParents(proto IPrototype, pos dto.Vector3, rot dto.Quaternion, active, inactive IContainer) (IInstance, error) {
	p, err := r.resolve(proto, active, inactive)
	if err != nil {
		return nil, err
	}
	return p.Request(pos, rot)
}

// Release 把对象放回所属的对象池
func (r *Registry) Release(inst IInstance) error {
	p, err := r.ResolveOwner(inst)
	if err != nil {
		r.logger.Errorf("release %s failed: %v", describe(inst), err)
		return err
	}
	if err = p.Release(inst); err != nil {
		r.logger.Errorf("release %s failed: %v", describe(inst), err)
		return err
	}
	return nil
}

// ReleaseDelayed 延时放回,delay<=0时立即放回
//
// 返回的定时器可以用来取消这次放回
func (r *Registry) ReleaseDelayed(inst IInstance, delay time.Duration) (inf.ITimer, error) {
	if _, err := r.ResolveOwner(inst); err != nil {
		r.logger.Errorf("delayed release %s failed: %v", describe(inst), err)
		return nil, err
	}
	if delay <= 0 {
		return nil, r.Release(inst)
	}
	return r.scheduler.AfterFunc(delay, "objectpool.release."+inst.PoolTag().name, func(inf.ITimer) {
		_ = r.Release(inst)
	}), nil
}

// InstantiateAs 取出对象并转换成T,类型不匹配时对象会被放回
func InstantiateAs[T any](r *Registry, proto IPrototype, pos dto.Vector3, rot dto.Quaternion) (T, error) {
	var zero T
	inst, err := r.Instantiate(proto, pos, rot)
	if err != nil {
		return zero, err
	}
	t, ok := inst.(T)
	if !ok {
		err = fmt.Errorf("%w: %s is %T, want %v", def.ErrInstanceTypeMismatch, proto.GetName(), inst, reflect.TypeFor[T]())
		r.logger.Error(err)
		_ = r.Release(inst)
		return zero, err
	}
	return t, nil
}

func describe(inst IInstance) string {
	if inst == nil {
		return "<nil>"
	}
	if tag := inst.PoolTag(); tag != nil && tag.name != "" {
		return tag.name
	}
	return fmt.Sprintf("%T", inst)
}
