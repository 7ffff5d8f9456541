package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/njtc406/emberpool/engine/pkg/objectpool"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/logrus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errServerRunning = errors.New("monitor server is running")

// Conf 监控服务配置
type Conf struct {
	Addr              string            // 监听地址
	Namespace         string            // 指标前缀(默认emberpool)
	Accounts          map[string]string // basic auth账号,为空不校验
	Pprof             bool              // 是否开启/debug/pprof
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

type Server struct {
	conf     *Conf
	source   IStatsSource
	logger   log.ILogger
	handler  *gin.Engine
	server   *http.Server
	registry *prometheus.Registry
	logPipe  io.WriteCloser
	listener net.Listener
	wg       sync.WaitGroup
	running  uint32
}

type levelWriter interface {
	WriterLevel(level logrus.Level) *io.PipeWriter
}

// NewServer mode为gin的运行模式(debug/release)
func NewServer(conf *Conf, source IStatsSource, logger log.ILogger, mode string) *Server {
	if conf.Namespace == "" {
		conf.Namespace = "emberpool"
	}
	if conf.ReadHeaderTimeout == 0 {
		conf.ReadHeaderTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		conf:     conf,
		source:   source,
		logger:   logger.WithField("module", "monitor"),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		NewCollector(conf.Namespace, source),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if mode == gin.DebugMode || mode == gin.ReleaseMode || mode == gin.TestMode {
		gin.SetMode(mode)
	}
	s.handler = gin.New()
	var out io.Writer = io.Discard
	if lw, ok := logger.(levelWriter); ok {
		s.logPipe = lw.WriterLevel(logrus.DebugLevel)
		out = s.logPipe
	}
	s.handler.Use(
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		gin.LoggerWithConfig(gin.LoggerConfig{Formatter: s.logFormatter, Output: out}),
		gin.Recovery(),
		basicAuth(conf.Accounts),
	)
	s.route()
	return s
}

func (s *Server) route() {
	s.handler.GET("/pools", s.listPools)
	s.handler.GET("/pools/:keyword", s.getPool)
	s.handler.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	if s.conf.Pprof {
		group := s.handler.Group("/debug/pprof")
		group.GET("/", gin.WrapF(pprof.Index))
		group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		group.GET("/profile", gin.WrapF(pprof.Profile))
		group.GET("/symbol", gin.WrapF(pprof.Symbol))
		group.GET("/trace", gin.WrapF(pprof.Trace))
		group.GET("/:name", func(c *gin.Context) {
			pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
		})
	}
}

func (s *Server) logFormatter(p gin.LogFormatterParams) string {
	return fmt.Sprintf("[%s] %s %s %s %d %s \"%s\" %s\n",
		p.ClientIP,
		p.Method,
		p.Path,
		p.Request.Proto,
		p.StatusCode,
		p.Latency,
		p.Request.UserAgent(),
		p.ErrorMessage,
	)
}

func (s *Server) writeJSON(c *gin.Context, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(code, "application/json; charset=utf-8", data)
}

func (s *Server) listPools(c *gin.Context) {
	stats := s.source.Stats()
	if stats == nil {
		stats = []objectpool.Stats{}
	}
	s.writeJSON(c, http.StatusOK, stats)
}

// getPool 名称重复时需要通过?handle=指定,否则返回409和所有同名对象池
func (s *Server) getPool(c *gin.Context) {
	keyword := c.Param("keyword")
	handle := c.Query("handle")
	var matched []objectpool.Stats
	for _, st := range s.source.Stats() {
		if st.Keyword != keyword {
			continue
		}
		if handle != "" && strconv.FormatUint(uint64(st.Handle), 10) != handle {
			continue
		}
		matched = append(matched, st)
	}

	switch len(matched) {
	case 0:
		s.writeJSON(c, http.StatusNotFound, gin.H{"error": "pool not found", "keyword": keyword})
	case 1:
		s.writeJSON(c, http.StatusOK, matched[0])
	default:
		s.writeJSON(c, http.StatusConflict, gin.H{"error": "keyword shared by several pools, pass handle", "pools": matched})
	}
}

// Handler 测试中直接使用
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr 实际监听的地址,未启动时返回配置的地址
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.conf.Addr
}

func (s *Server) Start() error {
	if !atomic.CompareAndSwapUint32(&s.running, 0, 1) {
		return errServerRunning
	}
	ln, err := net.Listen("tcp", s.conf.Addr)
	if err != nil {
		atomic.StoreUint32(&s.running, 0)
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.conf.ReadHeaderTimeout,
		IdleTimeout:       s.conf.IdleTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Infof("listen %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err)
		}
	}()
	return nil
}

func (s *Server) Stop() {
	if !atomic.CompareAndSwapUint32(&s.running, 1, 0) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn(err)
	}
	s.wg.Wait()
	if s.logPipe != nil {
		_ = s.logPipe.Close()
	}
}
