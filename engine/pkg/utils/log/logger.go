/*
 * Copyright (c) 2024. YR. All rights reserved
 */

// Package log
// 模块名: 日志
// 功能描述: 基于logrus的日志封装,支持按时间切割和异步写入
// 作者:  yr  2024/3/2 0002 18:57
// 最后更新:  yr  2026/10/16
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/logrus"
)

// ILogger 日志接口,*logrus.Logger和*logrus.Entry都满足
type ILogger interface {
	logrus.FieldLogger
}

type Option func(l *logrus.Logger)

var levelMap = map[string]logrus.Level{
	"panic": logrus.PanicLevel,
	"fatal": logrus.FatalLevel,
	"error": logrus.ErrorLevel,
	"warn":  logrus.WarnLevel,
	"info":  logrus.InfoLevel,
	"debug": logrus.DebugLevel,
	"trace": logrus.TraceLevel,
}

var locker sync.Mutex
var writerLog = map[ILogger]io.Closer{}

func logWriter(logger ILogger, writer io.Closer) {
	locker.Lock()
	defer locker.Unlock()

	if _, ok := writerLog[logger]; ok {
		return
	}

	writerLog[logger] = writer
}

func logRelease(logger ILogger) {
	locker.Lock()
	defer locker.Unlock()
	if writer, ok := writerLog[logger]; ok {
		_ = writer.Close()
		delete(writerLog, logger)
	}
}

type AsyncMode struct {
	Enable bool
	Config *ChannelWriterConfig
}

type LoggerConf struct {
	Path         string        `binding:""`                                                        // 日志文件路径
	Name         string        `binding:""`                                                        // 日志文件名称
	Level        string        `binding:"omitempty,oneof=panic fatal error warn info debug trace"` // 日志写入级别 小于设置级别的类型都会被记录
	AsyncMode    *AsyncMode    `binding:""`                                                        // 是否异步写入
	Caller       bool          `binding:""`                                                        // 是否打印调用者
	FullCaller   bool          `binding:""`                                                        // 是否打印完整调用者
	Color        bool          `binding:""`                                                        // 是否打印级别色彩
	MaxAge       time.Duration `binding:"omitempty,min=1m,max=720h"`                               // 日志保留时间 min=1m,max=720h 最小1分钟,最大1个月,默认15天
	RotationTime time.Duration `binding:"omitempty,min=1m,max=24h"`                                // 日志切割时间 min=1m,max=24h 最小1分钟,最大1天,默认1天
}

func WithLevel(level logrus.Level) Option {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

func WithOut(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

func WithCaller(caller bool) Option {
	return func(l *logrus.Logger) {
		l.SetReportCaller(caller)
	}
}

// WithFullCaller 默认只打印文件名,开启后打印完整路径
func WithFullCaller(full bool) Option {
	return func(l *logrus.Logger) {
		f, ok := l.Formatter.(*logrus.TextFormatter)
		if !ok || full {
			return
		}
		f.CallerPrettyfier = func(frame *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
	}
}

func WithColor(color bool) Option {
	return func(l *logrus.Logger) {
		f, ok := l.Formatter.(*logrus.TextFormatter)
		if !ok {
			return
		}
		f.ForceColors = color
		f.DisableColors = !color
	}
}

// New creates a new Logger object.
func New(opts ...Option) ILogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func fixConf(conf *LoggerConf) *LoggerConf {
	if conf == nil {
		conf = &LoggerConf{
			Level: "info",
			AsyncMode: &AsyncMode{
				Enable: false,
			},
			MaxAge:       time.Hour * 24 * 15, // 默认15天
			RotationTime: time.Hour * 24,
		}
	}

	if conf.Level == "" {
		conf.Level = "info"
	}

	if conf.MaxAge == 0 {
		conf.MaxAge = time.Hour * 24 * 15
	}

	if conf.RotationTime == 0 {
		conf.RotationTime = time.Hour * 24
	}

	return conf
}

// NewDefaultLogger 创建一个通用日志对象
// filePath 日志输出目录
// conf.Name 日志文件名(最终文件名会是 filePath/fileName_20060102.log)(为空时只输出到stdout,stdout也未开启则无任何输出)
// conf.Level 日志级别,不在取值范围内时默认为error
// openStdout 是否开启标准输出
func NewDefaultLogger(filePath string, conf *LoggerConf, openStdout bool) (ILogger, error) {
	conf = fixConf(conf)
	var writers []io.Writer
	var closers []io.Closer

	if len(conf.Name) > 0 {
		if len(filePath) == 0 {
			filePath = "./" // 默认当前目录
		}
		if conf.RotationTime < time.Minute || conf.RotationTime > time.Hour*24 {
			return nil, def.ErrRotationTime
		}
		pattern := "_%Y%m%d.log"
		if conf.RotationTime < time.Hour {
			pattern = "_%Y%m%d%H%M.log"
		} else if conf.RotationTime < time.Hour*24 {
			pattern = "_%Y%m%d%H.log"
		}

		w, err := rotatelogs.New(
			path.Join(filePath, conf.Name)+pattern,
			rotatelogs.WithMaxAge(conf.MaxAge),
			rotatelogs.WithRotationTime(conf.RotationTime),
		)
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
		closers = append(closers, w)
	}

	if openStdout {
		writers = append(writers, os.Stdout)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	level := strings.ToLower(conf.Level)
	if _, ok := levelMap[level]; !ok {
		level = "error"
	}

	var writer = io.MultiWriter(writers...)
	if conf.AsyncMode != nil && conf.AsyncMode.Enable {
		// 开启了异步模式,使用异步writer代替同步writer
		w := NewChannelWriter(writer, conf.AsyncMode.Config)
		writer = w
		// 异步writer需要先于文件关闭
		closers = append([]io.Closer{w}, closers...)
	}

	logger := New(
		WithLevel(levelMap[level]),
		WithCaller(conf.Caller),
		WithColor(conf.Color),
		WithOut(writer),
		WithFullCaller(conf.FullCaller),
	)

	if len(closers) > 0 {
		logWriter(logger, multiCloser(closers))
	}

	return logger, nil
}

func Release(logger ILogger) {
	if logger == nil {
		return
	}

	logRelease(logger)
}

type multiCloser []io.Closer

func (mc multiCloser) Close() error {
	var first error
	for _, c := range mc {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
