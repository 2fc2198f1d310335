package main

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/tidwall/redcon"

	"splitfile-go/service"
)

const addr = "127.0.0.1:6380"

type SplitFileServer struct {
	svc    *service.Service
	server *redcon.Server
	mu     *sync.RWMutex
	logger zerolog.Logger
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	flags := pflag.NewFlagSet("splitfile-redis", pflag.ExitOnError)
	service.BindFlags(flags, addr)
	_ = flags.Parse(os.Args[1:])

	cfg, err := service.LoadConfig(flags)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	// 打开分卷文件服务
	svc, err := service.NewService(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open service")
	}

	splitFileServer := &SplitFileServer{
		svc:    svc,
		mu:     &sync.RWMutex{},
		logger: logger,
	}

	// 初始化一个 Redis 协议服务端
	splitFileServer.server = redcon.NewServer(cfg.Addr, execClientCommand, splitFileServer.accept, splitFileServer.closed)
	splitFileServer.listen(cfg.Addr)
}

func (ss *SplitFileServer) listen(addr string) {
	ss.logger.Info().Str("addr", addr).Msg("splitfile server running")
	if err := ss.server.ListenAndServe(); err != nil {
		ss.logger.Error().Err(err).Msg("server stopped")
	}
	if err := ss.svc.Close(); err != nil {
		ss.logger.Error().Err(err).Msg("failed to close service")
	}
}

func (ss *SplitFileServer) accept(conn redcon.Conn) bool {
	cli := new(SplitFileClient)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	cli.server = ss
	cli.svc = ss.svc
	conn.SetContext(cli)
	ss.logger.Debug().Str("remote", conn.RemoteAddr()).Msg("client connected")
	return true
}

func (ss *SplitFileServer) closed(conn redcon.Conn, err error) {
	if err != nil {
		ss.logger.Debug().Err(err).Str("remote", conn.RemoteAddr()).Msg("client disconnected")
	}
}
