// Package util
// @Title  title
// @Description  进程和主机负载
// @Author  yr  2025/4/24
// @Update  yr  2026/10/16
package util

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

func GetCPULoad() float64 {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return 0.0
	}
	return percents[0] / 100 // 转成 0.0 - 1.0 之间
}

// ProcessUsage 当前进程资源占用
type ProcessUsage struct {
	RSS        uint64  // 常驻内存(字节)
	VMS        uint64  // 虚拟内存(字节)
	CPUPercent float64 // 进程cpu占用
	NumThreads int32
}

var (
	selfOnce sync.Once
	self     *process.Process
	selfErr  error
)

func GetProcessUsage() (*ProcessUsage, error) {
	selfOnce.Do(func() {
		self, selfErr = process.NewProcess(int32(os.Getpid()))
	})
	if selfErr != nil {
		return nil, selfErr
	}

	mem, err := self.MemoryInfo()
	if err != nil {
		return nil, err
	}
	usage := &ProcessUsage{
		RSS: mem.RSS,
		VMS: mem.VMS,
	}
	// 以下两项获取失败不影响内存数据
	usage.CPUPercent, _ = self.CPUPercent()
	usage.NumThreads, _ = self.NumThreads()
	return usage, nil
}
