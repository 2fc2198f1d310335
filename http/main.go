package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"splitfile-go/service"
)

const addr = "localhost:8080"

type handler struct {
	svc    *service.Service
	logger zerolog.Logger
}

func (h *handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name       string `json:"name"`
		VolumeSize int64  `json:"volume_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.svc.Create(req.Name, req.VolumeSize); err != nil {
		h.writeError(w, err, "failed to create split file")
		return
	}
	// 新建后关闭，读写请求各自打开独立句柄
	_ = h.svc.CloseFile(req.Name)
	writeJSON(w, "ok")
}

// 把请求体追加到分卷文件末尾
func (h *handler) handleWrite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 每个请求使用独立句柄，并发请求互不影响
	total, err := h.svc.AppendFrom(r.URL.Query().Get("name"), r.Body)
	if err != nil {
		h.writeError(w, err, "failed to append to split file")
		return
	}
	writeJSON(w, total)
}

// 读取 [offset, offset+length) 范围内的数据
func (h *handler) handleRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	name := query.Get("name")
	var offset int64
	if s := query.Get("offset"); s != "" {
		var err error
		if offset, err = strconv.ParseInt(s, 10, 64); err != nil || offset < 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
	}
	length, err := strconv.Atoi(query.Get("length"))
	if err != nil || length < 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	value, err := h.svc.ReadAt(name, offset, length)
	if err != nil {
		h.writeError(w, err, "failed to read split file")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(value)
}

func (h *handler) handleStat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stat, err := h.svc.Stat(r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err, "failed to stat split file")
		return
	}
	writeJSON(w, stat)
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := h.svc.List([]byte(r.URL.Query().Get("prefix")))
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (h *handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.svc.Drop(r.URL.Query().Get("name")); err != nil {
		h.writeError(w, err, "failed to drop split file")
		return
	}
	writeJSON(w, "ok")
}

func (h *handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidMode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		h.logger.Error().Err(err).Msg(msg)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newMux(h *handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/splitfile/create", h.handleCreate)
	mux.HandleFunc("/splitfile/write", h.handleWrite)
	mux.HandleFunc("/splitfile/read", h.handleRead)
	mux.HandleFunc("/splitfile/stat", h.handleStat)
	mux.HandleFunc("/splitfile/list", h.handleList)
	mux.HandleFunc("/splitfile/drop", h.handleDrop)
	return mux
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	flags := pflag.NewFlagSet("splitfile-http", pflag.ExitOnError)
	service.BindFlags(flags, addr)
	_ = flags.Parse(os.Args[1:])

	cfg, err := service.LoadConfig(flags)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	svc, err := service.NewService(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open service")
	}
	defer svc.Close()

	// 启动 HTTP 服务
	logger.Info().Str("addr", cfg.Addr).Msg("splitfile http server running")
	if err := http.ListenAndServe(cfg.Addr, newMux(&handler{svc: svc, logger: logger})); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
}
