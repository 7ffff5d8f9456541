// Package node
// 模块名: 节点
// 功能描述: 用于提供程序入口,持有主循环和对象池注册表
// 作者:  yr  2024/1/10 0010 23:43
// 最后更新:  yr  2026/10/16
package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njtc406/emberpool/engine/pkg/config"
	"github.com/njtc406/emberpool/engine/pkg/container"
	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/emberpool/engine/pkg/monitor"
	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/pid"
	"github.com/njtc406/emberpool/engine/pkg/utils/timer"
	"github.com/njtc406/emberpool/engine/pkg/utils/title"
	"github.com/njtc406/emberpool/engine/pkg/utils/version"
)

// Context 主循环启动后交给业务的运行环境
type Context struct {
	Conf       *config.Config
	Registry   *objectpool.Registry
	Dispatcher *timer.Dispatcher
	Active     *container.Node
	Inactive   *container.Node
	Logger     log.ILogger
}

// ReadyFun 在主循环goroutine中执行
type ReadyFun func(c *Context)

type StartParam struct {
	Name       string
	Version    string
	ConfPath   string
	Conf       *config.Config
	Logger     log.ILogger
	Prototypes map[string]objectpool.IPrototype
	Ready      []ReadyFun
	Out        io.Writer
}

type StartOption func(*StartParam)

// WithName 节点名称,用于pid文件
func WithName(name string) StartOption {
	return func(p *StartParam) {
		p.Name = name
	}
}

func WithVersion(v string) StartOption {
	return func(p *StartParam) {
		p.Version = v
	}
}

func WithConfPath(confPath string) StartOption {
	return func(p *StartParam) {
		p.ConfPath = confPath
	}
}

// WithConf 直接使用已经解析好的配置,不再读取配置目录
func WithConf(conf *config.Config) StartOption {
	return func(p *StartParam) {
		p.Conf = conf
	}
}

func WithLogger(logger log.ILogger) StartOption {
	return func(p *StartParam) {
		p.Logger = logger
	}
}

// WithPrototypes 原型目录,配置中的对象池按名称查找原型
func WithPrototypes(protos ...objectpool.IPrototype) StartOption {
	return func(p *StartParam) {
		if p.Prototypes == nil {
			p.Prototypes = make(map[string]objectpool.IPrototype, len(protos))
		}
		for _, proto := range protos {
			p.Prototypes[proto.GetName()] = proto
		}
	}
}

func WithReady(fns ...ReadyFun) StartOption {
	return func(p *StartParam) {
		p.Ready = append(p.Ready, fns...)
	}
}

// WithOutput 标题和退出统计的输出
func WithOutput(w io.Writer) StartOption {
	return func(p *StartParam) {
		p.Out = w
	}
}

func newParam(opts []StartOption) *StartParam {
	param := &StartParam{Name: "node", Out: os.Stdout}
	for _, f := range opts {
		f(param)
	}
	param.Version = version.Fix(param.Version)
	return param
}

// Setup 按配置创建调度器,根容器和注册表,并注册配置中的对象池
//
// 配置中的对象池注册失败只记录日志,不影响节点启动
func Setup(param *StartParam) (*Context, error) {
	conf := param.Conf
	if conf == nil {
		var err error
		if conf, err = config.Load(param.ConfPath); err != nil {
			return nil, err
		}
	}
	logger := param.Logger
	if logger == nil {
		logger = log.Default()
	}

	nc := conf.NodeConf
	disp := timer.NewDispatcher(timer.WithPostSize(nc.PostSize), timer.WithLogger(logger))
	c := &Context{
		Conf:       conf,
		Dispatcher: disp,
		Active:     container.NewNode(nc.ActiveContainer),
		Inactive:   container.NewNode(nc.InactiveContainer),
		Logger:     logger,
	}
	reg, err := objectpool.NewRegistry(disp,
		objectpool.WithLogger(logger),
		objectpool.WithContainers(c.Active, c.Inactive),
		objectpool.WithWarnWindow(nc.WarnWindow),
	)
	if err != nil {
		return nil, err
	}
	c.Registry = reg

	if err = registerPools(c, param.Prototypes); err != nil {
		logger.Warnf("some configured pools were skipped: %v", err)
	}
	return c, nil
}

func registerPools(c *Context, protos map[string]objectpool.IPrototype) error {
	var errs []error
	confs := make([]*objectpool.PoolConf, 0, len(c.Conf.Pools))
	for _, entry := range c.Conf.Pools {
		proto, ok := protos[entry.Prototype]
		if !ok {
			err := fmt.Errorf("%w: %s", def.ErrPrototypeNotFound, entry.Prototype)
			c.Logger.Error(err)
			errs = append(errs, err)
			continue
		}
		confs = append(confs, entry.ToPoolConf(proto))
	}
	if err := c.Registry.RegisterAll(confs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run 启动主循环,直到ctx结束
func Run(ctx context.Context, opts ...StartOption) error {
	param := newParam(opts)
	c, err := Setup(param)
	if err != nil {
		return err
	}
	return c.run(ctx, param)
}

func (c *Context) run(ctx context.Context, param *StartParam) error {
	nc := c.Conf.NodeConf

	var server *monitor.Server
	if nc.MonitorAddr != "" {
		server = monitor.NewServer(&monitor.Conf{
			Addr:     nc.MonitorAddr,
			Accounts: nc.MonitorAccounts,
			Pprof:    nc.MonitorPprof,
		}, c.Registry, c.Logger, nc.SystemStatus)
		if err := server.Start(); err != nil {
			return fmt.Errorf("start monitor: %w", err)
		}
		defer server.Stop()
	}

	reporter := monitor.NewReporter(c.Registry, c.Logger)
	if err := reporter.Start(c.Dispatcher, nc.StatsReportSpec); err != nil {
		return err
	}
	defer reporter.Stop()

	for _, fn := range param.Ready {
		fn := fn
		if err := c.Dispatcher.Post(func() { fn(c) }); err != nil {
			return err
		}
	}

	c.Logger.Infof("node %s started, %d pools", param.Name, len(c.Registry.Pools()))
	c.Dispatcher.Run(ctx, nc.TickInterval)
	c.Logger.Info("==================>>node loop stopped<<==================")
	return nil
}

// Start 程序入口,收到退出信号后返回
func Start(opts ...StartOption) {
	startTime := time.Now()
	param := newParam(opts)

	// 打印版本信息
	title.EchoTitle(param.Out, param.Version)

	// 初始化节点配置
	if param.Conf == nil {
		config.Init(param.ConfPath)
		param.Conf = config.Conf
	} else {
		config.Conf = param.Conf
	}

	// 初始化日志
	log.Init(config.Conf.SystemLogger, config.IsDebug())

	// 记录pid
	if err := pid.RecordPID(config.Conf.NodeConf.PVPath, param.Name); err != nil {
		log.SysLogger.Warnf("record pid failed: %v", err)
	}
	defer pid.DeletePID(config.Conf.NodeConf.PVPath, param.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pools := 0
	c, err := Setup(param)
	if err != nil {
		log.SysLogger.Errorf("node setup failed: %v", err)
	} else {
		if err = c.run(ctx, param); err != nil {
			log.SysLogger.Errorf("node exited with error: %v", err)
		}
		pools = len(c.Registry.Pools())
	}

	log.SysLogger.Info("server stopped, program exited...")
	log.Close()
	title.GracefulExit(param.Out, time.Since(startTime), param.Version, pools)
}
