// Package def
// @Title  常量定义
// @Description  desc
// @Author  yr  2024/11/6
// @Update  yr  2026/10/16
package def

import "time"

const (
	DefaultRuntimeMaxWarningCount = 1000             // 运行时自动创建的对象池告警数量
	DefaultMaxWarningCount        = 10000            // 配置对象池默认告警数量
	DefaultCullThreshold          = 100              // 默认超过该数量开始回收
	DefaultCullBatchLimit         = 1000             // 默认每轮最多回收数量
	DefaultCullIdleDelay          = 60 * time.Second // 默认空闲多久后开始回收
	DefaultWarnWindow             = time.Minute      // 同一个对象池告警间隔
	MaxPreloadWorkers             = 256              // 预加载最大并发数
)

const (
	DefaultTickInterval      = 20 * time.Millisecond // 默认主循环间隔
	DefaultPostSize          = 1024                  // 默认投递队列长度
	DefaultActiveContainer   = "Active"
	DefaultInactiveContainer = "Inactive"
	DefaultConfPath          = "./configs"
	DefaultPVPath            = "./data"
)
