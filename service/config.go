package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"splitfile-go/fio"
	"splitfile-go/index"
	"splitfile-go/utils"
)

type Config struct {
	// 监听地址
	Addr string

	// 分卷文件与目录索引所在目录
	DataDir string

	// 目录索引类型
	IndexType index.IndexType

	// 卷文件 IO 类型
	IOType fio.FileIOType

	// 未指定时使用的卷大小
	DefaultVolumeSize int64

	// 日志级别
	LogLevel string
}

var DefaultConfig = Config{
	Addr:              "127.0.0.1:6380",
	DataDir:           os.TempDir(),
	IndexType:         index.BPTree,
	IOType:            fio.StandardIO,
	DefaultVolumeSize: 64 * 1024 * 1024, // 64MB
	LogLevel:          "info",
}

// 注册命令行参数
func BindFlags(flags *pflag.FlagSet, defaultAddr string) {
	flags.String("addr", defaultAddr, "listen address")
	flags.String("data-dir", DefaultConfig.DataDir, "directory holding split files and the catalog")
	flags.String("index", "bptree", "catalog index type: btree, art or bptree")
	flags.String("io", "standard", "volume io type: standard or mmap")
	flags.String("volume-size", "64MB", "default volume size")
	flags.String("log-level", DefaultConfig.LogLevel, "log level")
	flags.String("config", "", "config file")
}

// 按 命令行参数 > 环境变量 SPLITFILE_* > 配置文件 > 默认值 的顺序加载配置
func LoadConfig(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("splitfile")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Config{}, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := DefaultConfig
	cfg.Addr = v.GetString("addr")
	cfg.DataDir = v.GetString("data-dir")
	cfg.LogLevel = v.GetString("log-level")

	indexType, err := parseIndexType(v.GetString("index"))
	if err != nil {
		return Config{}, err
	}
	cfg.IndexType = indexType

	ioType, err := parseIOType(v.GetString("io"))
	if err != nil {
		return Config{}, err
	}
	cfg.IOType = ioType

	volSize, err := utils.ParseSize(v.GetString("volume-size"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid volume size: %w", err)
	}
	cfg.DefaultVolumeSize = volSize
	return cfg, nil
}

func parseIndexType(s string) (index.IndexType, error) {
	switch strings.ToLower(s) {
	case "btree":
		return index.Btree, nil
	case "art":
		return index.ART, nil
	case "bptree":
		return index.BPTree, nil
	default:
		return 0, fmt.Errorf("unsupported index type %q", s)
	}
}

func parseIOType(s string) (fio.FileIOType, error) {
	switch strings.ToLower(s) {
	case "standard":
		return fio.StandardIO, nil
	case "mmap":
		return fio.MemoryMap, nil
	default:
		return 0, fmt.Errorf("unsupported io type %q", s)
	}
}
