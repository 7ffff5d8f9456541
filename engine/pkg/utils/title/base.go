/*
 * Copyright (c) 2023. YR. All rights reserved
 */

// Package title
// 模块名: 启动标题
// 功能描述: 启动时打印标题,退出时打印运行统计
// 作者:  yr  2023/4/26 0026 22:51
// 最后更新:  yr  2026/10/16
package title

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	reset        = "\033[0m"
	cyan         = "\033[36m"
	yellow       = "\033[33m"
	lightMagenta = "\033[38;5;13m"
	lightCyan    = "\033[38;5;12m"
)

var titleBase = `
     ___ _ __ ___  | |__   ___ _ __ _ __   ___   ___ | |
    / _ \ '_ ` + "`" + ` _ \ | '_ \ / _ \ '__| '_ \ / _ \ / _ \| |
   |  __/ | | | | || |_) |  __/ |  | |_) | (_) | (_) | |
    \___|_| |_| |_||_.__/ \___|_|  | .__/ \___/ \___/|_|
                                   |_|
          Powered by Ember Framework • Version: %s

`

func EchoTitle(w io.Writer, version string) {
	_, _ = fmt.Fprintf(w, titleBase, version)
}

// GracefulExit 打印运行统计,pools为退出时的对象池数量
func GracefulExit(w io.Writer, elapsed time.Duration, version string, pools int) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	var gcStats debug.GCStats
	debug.ReadGCStats(&gcStats)
	var lastPause time.Duration
	if len(gcStats.Pause) > 0 {
		lastPause = gcStats.Pause[0]
	}

	_, _ = fmt.Fprintf(w, " \nShutting down\n")
	_, _ = fmt.Fprintf(w, "%s══════════════ Runtime Stats ═════════════════%s\n", cyan, reset)
	_, _ = fmt.Fprintf(w, " Uptime: %.1fs\n", elapsed.Seconds())
	_, _ = fmt.Fprintf(w, " CPU Cores: %d (Goroutines: %d)\n", runtime.NumCPU(), runtime.NumGoroutine())
	_, _ = fmt.Fprintf(w, " Pools: %d\n", pools)
	_, _ = fmt.Fprintf(w, " GC Cycles: %d\n", m.NumGC)
	_, _ = fmt.Fprintf(w, " Last GC Pause: %.2fms\n", float64(lastPause)/float64(time.Millisecond))
	_, _ = fmt.Fprintf(w, "%s══════════════ Memory Stats ═════════════════%s\n", cyan, reset)
	_, _ = fmt.Fprintf(w, " HeapAlloc: %.2f MB\n", float64(m.HeapAlloc)/1024/1024)
	_, _ = fmt.Fprintf(w, "%s═══════════════════════════════%s\n", cyan, reset)
	_, _ = fmt.Fprintf(w, " %sThank you for using %sEmberPool%s v%s%s\n", yellow, lightMagenta, lightCyan, version, reset)
}
