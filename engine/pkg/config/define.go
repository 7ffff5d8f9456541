package config

import (
	"time"

	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
)

const (
	Debug   = `debug`
	Release = `release`
)

type Config struct {
	NodeConf     *NodeConf       `binding:"required"` // 节点基础配置
	SystemLogger *log.LoggerConf `binding:"required"` // 系统日志
	Pools        []*PoolEntry    `binding:"dive"`     // 启动时注册的对象池
}

type NodeConf struct {
	SystemStatus      string            `binding:"oneof=debug release"` // 系统状态(debug/release)
	PVPath            string            `binding:"required"`            // 运行时目录(默认./data)
	TickInterval      time.Duration     `binding:"min=1ms,max=1s"`      // 主循环间隔(默认20ms)
	PostSize          int               `binding:"min=1"`               // 主循环投递队列长度(默认1024)
	ActiveContainer   string            `binding:"required"`            // 使用中对象的根容器名称
	InactiveContainer string            `binding:"required"`            // 空闲对象的根容器名称
	WarnWindow        time.Duration     `binding:"min=0"`               // 对象池超量告警间隔(默认1分钟)
	StatsReportSpec   string            `binding:""`                    // 统计日志的cron表达式,为空不打印
	MonitorAddr       string            `binding:""`                    // 监控http地址,为空不开启
	MonitorAccounts   map[string]string `binding:""`                    // 监控basic auth账号
	MonitorPprof      bool              `binding:""`                    // 监控是否开启pprof
}

// PoolEntry 配置文件中的对象池,Prototype是原型目录中的名称
type PoolEntry struct {
	Prototype        string        `binding:"required"`
	Keyword          string        `binding:"max=128"`
	PreloadCount     int           `binding:"min=0"`
	MaxWarningCount  int           `binding:"min=0"`
	CullEnabled      bool          `binding:""`
	CullThreshold    int           `binding:"min=0"`
	CullBatchLimit   int           `binding:"min=0"`
	CullIdleDelay    time.Duration `binding:"min=0"`
	CullPassInterval time.Duration `binding:"min=0"`
	PreloadWorkers   int           `binding:"min=0,max=256"`
}

func (e *PoolEntry) ToPoolConf(proto objectpool.IPrototype) *objectpool.PoolConf {
	return &objectpool.PoolConf{
		Prototype:        proto,
		Keyword:          e.Keyword,
		PreloadCount:     e.PreloadCount,
		MaxWarningCount:  e.MaxWarningCount,
		CullEnabled:      e.CullEnabled,
		CullThreshold:    e.CullThreshold,
		CullBatchLimit:   e.CullBatchLimit,
		CullIdleDelay:    e.CullIdleDelay,
		CullPassInterval: e.CullPassInterval,
		PreloadWorkers:   e.PreloadWorkers,
	}
}
