package monitor

import (
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/timer"
	"github.com/njtc406/emberpool/engine/pkg/utils/util"

	inf "github.com/njtc406/emberpool/engine/pkg/interfaces"
)

// Reporter 定时把对象池统计和进程资源占用写入日志
type Reporter struct {
	source IStatsSource
	logger log.ILogger
	timer  inf.ITimer
}

func NewReporter(source IStatsSource, logger log.ILogger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Reporter{
		source: source,
		logger: logger.WithField("module", "reporter"),
	}
}

// Start 按cron表达式在调度器中执行,spec为空时不启动
func (r *Reporter) Start(d *timer.Dispatcher, spec string) error {
	if spec == "" {
		return nil
	}
	t, err := d.CronFunc(spec, "monitor.report", func(inf.ITimer) {
		r.Report()
	})
	if err != nil {
		return err
	}
	r.timer = t
	return nil
}

func (r *Reporter) Stop() {
	if r.timer != nil {
		r.timer.Cancel()
		r.timer = nil
	}
}

// Report 打印一次统计
func (r *Reporter) Report() {
	if usage, err := util.GetProcessUsage(); err != nil {
		r.logger.Warnf("get process usage failed: %v", err)
	} else {
		r.logger.Infof("process rss:%d vms:%d cpu:%.2f%% threads:%d", usage.RSS, usage.VMS, usage.CPUPercent, usage.NumThreads)
	}

	for _, s := range r.source.Stats() {
		r.logger.Infof("pool %s", s.String())
	}
}
