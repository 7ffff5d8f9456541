// Package monitor
// @Title  对象池监控
// @Description  prometheus指标、调试http接口和定时统计日志
// @Author  yr  2026/10/16
// @Update  yr  2026/10/16
package monitor

import (
	"strconv"

	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/prometheus/client_golang/prometheus"
)

// IStatsSource 统计数据来源,*objectpool.Registry满足该接口
type IStatsSource interface {
	Stats() []objectpool.Stats
}

type metricDesc struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(s *objectpool.Stats) float64
}

// Collector 每次抓取时从注册表读取快照,不需要主循环配合
type Collector struct {
	source  IStatsSource
	metrics []metricDesc
}

func NewCollector(namespace string, source IStatsSource) *Collector {
	// 对象池名称可以重复,handle保证标签组合唯一
	labels := []string{"pool", "handle"}
	newDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, labels, nil)
	}
	boolValue := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}

	return &Collector{
		source: source,
		metrics: []metricDesc{
			{newDesc("free", "Instances waiting in the free set."), prometheus.GaugeValue, func(s *objectpool.Stats) float64 { return float64(s.CountFree) }},
			{newDesc("in_use", "Instances handed out and not yet released."), prometheus.GaugeValue, func(s *objectpool.Stats) float64 { return float64(s.CountInUse) }},
			{newDesc("total", "Instances managed by the pool."), prometheus.GaugeValue, func(s *objectpool.Stats) float64 { return float64(s.CountTotal) }},
			{newDesc("culling_active", "1 while the reclaimer is running."), prometheus.GaugeValue, func(s *objectpool.Stats) float64 { return boolValue(s.CullingActive) }},
			{newDesc("created_total", "Instances cloned from the prototype."), prometheus.CounterValue, func(s *objectpool.Stats) float64 { return float64(s.TotalCreated) }},
			{newDesc("destroyed_total", "Instances destroyed by the reclaimer."), prometheus.CounterValue, func(s *objectpool.Stats) float64 { return float64(s.TotalDestroyed) }},
			{newDesc("requests_total", "Requests served."), prometheus.CounterValue, func(s *objectpool.Stats) float64 { return float64(s.Requests) }},
			{newDesc("reuses_total", "Requests served from the free set."), prometheus.CounterValue, func(s *objectpool.Stats) float64 { return float64(s.Reuses) }},
			{newDesc("releases_total", "Instances returned to the pool."), prometheus.CounterValue, func(s *objectpool.Stats) float64 { return float64(s.Releases) }},
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.source.Stats() {
		s := s
		handle := strconv.FormatUint(uint64(s.Handle), 10)
		for _, m := range c.metrics {
			ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value(&s), s.Keyword, handle)
		}
	}
}
