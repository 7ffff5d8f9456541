package objectpool

import (
	"github.com/njtc406/emberpool/engine/pkg/dto"
)

// Tag 池化对象的归属信息,只有对象池会修改
type Tag struct {
	pool      PoolHandle // 所属对象池,创建后不再改变
	free      bool       // 是否在空闲列表中
	releasing bool       // 正在执行回收回调
	slot      int        // 在使用列表中的下标
	parent    IContainer
	id        string
	name      string
}

func (t *Tag) PoolTag() *Tag {
	return t
}

func (t *Tag) Owner() PoolHandle {
	return t.pool
}

func (t *Tag) IsPooled() bool {
	return t.pool != NoPool
}

func (t *Tag) IsFree() bool {
	return t.free
}

func (t *Tag) GetParent() IContainer {
	return t.parent
}

func (t *Tag) GetId() string {
	return t.id
}

func (t *Tag) GetName() string {
	return t.name
}

// Object IInstance的基础实现,业务对象嵌入后按需覆盖
type Object struct {
	Tag

	active    bool
	destroyed bool
	position  dto.Vector3
	rotation  dto.Quaternion
}

func (o *Object) SetActive(active bool) {
	o.active = active
}

func (o *Object) IsActive() bool {
	return o.active
}

func (o *Object) SetTransform(pos dto.Vector3, rot dto.Quaternion) {
	o.position = pos
	o.rotation = rot
}

func (o *Object) GetPosition() dto.Vector3 {
	return o.position
}

func (o *Object) GetRotation() dto.Quaternion {
	return o.rotation
}

func (o *Object) Destroy() {
	o.active = false
	o.destroyed = true
}

func (o *Object) IsDestroyed() bool {
	return o.destroyed
}

// Prototype 通过构造函数克隆实例的原型
type Prototype struct {
	name  string
	newFn func() IInstance
}

// NewPrototype newFn在开启并发预加载时会在多个goroutine中调用
func NewPrototype(name string, newFn func() IInstance) *Prototype {
	return &Prototype{name: name, newFn: newFn}
}

func (p *Prototype) GetName() string {
	return p.name
}

func (p *Prototype) Clone(pos dto.Vector3, rot dto.Quaternion) IInstance {
	if p.newFn == nil {
		return nil
	}
	inst := p.newFn()
	if inst == nil {
		return nil
	}
	inst.SetTransform(pos, rot)
	return inst
}
