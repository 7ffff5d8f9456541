// Package interfaces
// @Title  title
// @Description  desc
// @Author  yr  2025/1/15
// @Update  yr  2026/10/16
package interfaces

import "time"

type ITimer interface {
	GetName() string
	GetTimerId() uint64
	Cancel()
	IsActive() bool
}

// IScheduler 定时调度器,回调必须在调度器所属的goroutine中执行
type IScheduler interface {
	AfterFunc(d time.Duration, name string, cb func(t ITimer)) ITimer
}
