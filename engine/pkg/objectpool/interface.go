// Package objectpool
// @Title  对象池
// @Description  按原型划分的对象池,负责实例的创建、复用和空闲回收
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package objectpool

import (
	"github.com/njtc406/emberpool/engine/pkg/dto"
)

// PoolHandle 对象池在注册表中的序号(从1开始),0表示对象不是从池中创建的
type PoolHandle uint32

const NoPool PoolHandle = 0

// IInstance 池化对象,嵌入Object即可满足
type IInstance interface {
	PoolTag() *Tag
	SetActive(active bool)
	IsActive() bool
	SetTransform(pos dto.Vector3, rot dto.Quaternion)
	Destroy()
}

// IPrototype 对象原型
//
// 原型本身作为注册表的key,所以必须是可比较的类型(一般用指针)
type IPrototype interface {
	GetName() string
	Clone(pos dto.Vector3, rot dto.Quaternion) IInstance
}

// IContainer 实例挂载的父节点,对象池只负责挂载,不关心容器的实现
type IContainer interface {
	GetName() string
	Attach(inst IInstance)
	Detach(inst IInstance)
	CreateChild(name string) IContainer
}

// detached 没有提供容器时使用,所有操作都是空的
type detached struct {
	name string
}

func (d detached) GetName() string                    { return d.name }
func (d detached) Attach(IInstance)                   {}
func (d detached) Detach(IInstance)                   {}
func (d detached) CreateChild(name string) IContainer { return detached{name: d.name + "/" + name} }
