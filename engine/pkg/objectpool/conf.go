package objectpool

import (
	"time"

	"github.com/njtc406/emberpool/engine/pkg/def"
)

// PoolConf 对象池配置,零值字段会被填充为默认值
type PoolConf struct {
	Prototype         IPrototype    `binding:"-"`             // 原型
	Keyword           string        `binding:"max=128"`       // 对象池名称,为空时使用原型名称
	PreloadCount      int           `binding:"min=0"`         // 启动时预加载数量
	MaxWarningCount   int           `binding:"min=0"`         // 总数超过该值时打印告警,不会拒绝请求
	CullEnabled       bool          `binding:""`              // 是否开启空闲回收
	CullThreshold     int           `binding:"min=0"`         // 总数超过该值时开始回收
	CullBatchLimit    int           `binding:"min=0"`         // 每轮最多销毁数量
	CullIdleDelay     time.Duration `binding:"min=0"`         // 第一轮回收前的等待时间
	CullPassInterval  time.Duration `binding:"min=0"`         // 两轮回收之间的间隔,默认同CullIdleDelay
	PreloadWorkers    int           `binding:"min=0,max=256"` // 预加载并发数,>1时原型的Clone必须是并发安全的
	ActiveContainer   IContainer    `binding:"-"`             // 使用中的对象挂载点
	InactiveContainer IContainer    `binding:"-"`             // 空闲对象挂载点
}

// fixPoolConf 返回填充默认值后的副本,不修改传入的配置
func fixPoolConf(conf *PoolConf, explicit bool) PoolConf {
	c := *conf
	if c.Keyword == "" && c.Prototype != nil {
		c.Keyword = c.Prototype.GetName()
	}
	if c.MaxWarningCount == 0 {
		if explicit {
			c.MaxWarningCount = def.DefaultMaxWarningCount
		} else {
			c.MaxWarningCount = def.DefaultRuntimeMaxWarningCount
		}
	}
	if c.CullThreshold == 0 {
		c.CullThreshold = def.DefaultCullThreshold
	}
	if c.CullBatchLimit == 0 {
		c.CullBatchLimit = def.DefaultCullBatchLimit
	}
	if c.CullIdleDelay == 0 {
		c.CullIdleDelay = def.DefaultCullIdleDelay
	}
	if c.CullPassInterval == 0 {
		c.CullPassInterval = c.CullIdleDelay
	}
	if c.PreloadWorkers == 0 {
		c.PreloadWorkers = 1
	}
	return c
}
