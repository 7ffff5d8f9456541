// Package interfaces
// @Title  对象池回调
// @Description  池化对象可选实现的回调接口
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package interfaces

// IPoolInit 对象从池中取出后调用,用于重新初始化
type IPoolInit interface {
	InitFromPool()
}

// IPoolRelease 对象放回池中之前调用,用于清理使用期间的状态
type IPoolRelease interface {
	DeactivateBeforeRelease()
}
