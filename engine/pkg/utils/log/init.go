package log

import (
	"os"
	"path"
	"sync"
)

var SysLogger ILogger

var (
	fallbackOnce sync.Once
	fallback     ILogger
)

func Init(conf *LoggerConf, isDebug bool) {
	if SysLogger != nil {
		return
	}
	logger, err := NewDefaultLogger(
		path.Join(conf.Path),
		conf,
		isDebug, // 是否开启前台打印
	)
	if err != nil {
		panic(err)
	}

	SysLogger = logger

	SysLogger.Info("-------->system log init ok<---------")
}

// Default 返回系统日志,系统日志未初始化时返回一个输出到stdout的日志
func Default() ILogger {
	if SysLogger != nil {
		return SysLogger
	}
	fallbackOnce.Do(func() {
		fallback = New(WithOut(os.Stdout))
	})
	return fallback
}

func Close() {
	if SysLogger == nil {
		return
	}
	SysLogger.Info("-------->system log release<---------")
	Release(SysLogger)
	SysLogger = nil
}
