package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/njtc406/emberpool/engine/pkg/def"
	"github.com/njtc406/emberpool/engine/pkg/utils/log"
	"github.com/njtc406/emberpool/engine/pkg/utils/validate"
	"github.com/njtc406/viper"
)

var Conf = new(Config)

const (
	confName = "node"
	envFile  = ".env"
)

// 配置初始化逻辑:
// 1. 读取配置目录下的.env(不覆盖已有环境变量)
// 2. 设置默认值,绑定EMBER_前缀的环境变量
// 3. 解析node.yaml并校验

// Init 解析失败直接panic
func Init(confPath string) {
	fmt.Println("=============开始解析配置===================")
	c, err := Load(confPath)
	if err != nil {
		panic(err)
	}
	Conf = c
	// 初始化目录
	initDir(c)
	fmt.Println("=============配置解析完成===================")
}

// Load 解析配置目录下的node.yaml
func Load(confPath string) (*Config, error) {
	// 解析配置路径
	if envConfPath := os.Getenv("EMBER_CONF_PATH"); envConfPath != "" {
		confPath = envConfPath
	}
	if confPath == "" {
		confPath = def.DefaultConfPath
	}

	if err := loadEnvFile(path.Join(confPath, envFile)); err != nil {
		return nil, err
	}

	parser := viper.New()
	parser.SetConfigType("yaml")
	parser.SetConfigName(confName)
	parser.AddConfigPath(confPath)
	setDefaultValues(parser)

	// 绑定环境变量,只对设置过默认值或者配置中存在的key生效
	parser.SetEnvPrefix("EMBER")
	parser.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	parser.AutomaticEnv()

	if err := parser.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path.Join(confPath, confName), err)
	}

	c := new(Config)
	if err := parser.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal node conf: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid node conf: %w", validate.TransError(err, validate.ZH))
	}
	return c, nil
}

// loadEnvFile 已经存在的环境变量优先
func loadEnvFile(file string) error {
	envs, err := godotenv.Read(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", file, err)
	}
	for k, v := range envs {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err = os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// initDir 创建必要的目录
func initDir(c *Config) {
	createDirIfNotExists(c.NodeConf.PVPath)
	if c.SystemLogger.Path != "" {
		createDirIfNotExists(c.SystemLogger.Path)
	}
}

// createDirIfNotExists 创建目录
func createDirIfNotExists(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}
}

// setDefaultValues 设置默认值
func setDefaultValues(parser *viper.Viper) {
	// 默认基础配置
	parser.SetDefault("NodeConf.SystemStatus", Debug)
	parser.SetDefault("NodeConf.PVPath", def.DefaultPVPath)
	parser.SetDefault("NodeConf.TickInterval", def.DefaultTickInterval)
	parser.SetDefault("NodeConf.PostSize", def.DefaultPostSize)
	parser.SetDefault("NodeConf.ActiveContainer", def.DefaultActiveContainer)
	parser.SetDefault("NodeConf.InactiveContainer", def.DefaultInactiveContainer)
	parser.SetDefault("NodeConf.WarnWindow", def.DefaultWarnWindow)
	parser.SetDefault("NodeConf.StatsReportSpec", "")
	parser.SetDefault("NodeConf.MonitorAddr", "")
	parser.SetDefault("NodeConf.MonitorPprof", false)

	// 日志默认配置
	parser.SetDefault("SystemLogger", &log.LoggerConf{
		Path:         path.Join(def.DefaultPVPath, "logs"),
		Name:         "system",
		Level:        "info",
		Caller:       true,
		FullCaller:   false,
		Color:        false,
		MaxAge:       time.Hour * 24 * 15,
		RotationTime: time.Hour * 24,
	})
}

// IsDebug 返回是否为调试模式
func IsDebug() bool {
	return Conf.NodeConf != nil && Conf.NodeConf.SystemStatus == Debug
}
