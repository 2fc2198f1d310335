package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	splitfile "splitfile-go"
	"splitfile-go/data"
	"splitfile-go/index"
)

const fileLockName = "flock"

// 管理数据目录下的命名分卷文件：目录索引记录每个文件的卷大小，
// 已打开的文件保留句柄。SplitFile 本身不支持并发，所有操作由 mu 串行化
type Service struct {
	cfg      Config
	opts     splitfile.Options
	catalog  index.Indexer
	files    map[string]*splitfile.SplitFile
	locks    map[string]*sync.Mutex // 独立句柄操作按文件名串行
	fileLock *flock.Flock
	mu       *sync.Mutex
	logger   zerolog.Logger
}

func NewService(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("data dir is empty")
	}
	if cfg.DefaultVolumeSize <= 0 {
		return nil, splitfile.ErrInvalidVolumeSize
	}

	// 数据目录不存在则新建
	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	// 同一个数据目录只允许一个服务使用
	fileLock := flock.New(filepath.Join(cfg.DataDir, fileLockName))
	hold, err := fileLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !hold {
		return nil, ErrDataDirInUse
	}

	catalog, err := index.NewIndexer(cfg.IndexType, cfg.DataDir)
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}

	opts := splitfile.DefaultOptions
	opts.Fs = afero.NewOsFs()
	opts.IOType = cfg.IOType
	opts.Logger = logger

	s := &Service{
		cfg:      cfg,
		opts:     opts,
		catalog:  catalog,
		files:    make(map[string]*splitfile.SplitFile),
		locks:    make(map[string]*sync.Mutex),
		fileLock: fileLock,
		mu:       new(sync.Mutex),
		logger:   logger,
	}
	if err := s.loadCatalog(); err != nil {
		_ = catalog.Close()
		_ = fileLock.Unlock()
		return nil, err
	}
	logger.Info().Str("dir", cfg.DataDir).Int("files", catalog.Size()).Msg("service opened")
	return s, nil
}

// 把数据目录中不在目录索引里的分卷文件补进索引，内存索引重启后依靠它恢复。
// 存在续卷时第一卷大小就是卷大小，只有一卷时取第一卷大小与默认卷大小中较大的
func (s *Service) loadCatalog() error {
	entries, err := afero.ReadDir(s.opts.Fs, s.cfg.DataDir)
	if err != nil {
		return err
	}
	var loaded int
	for _, fi := range entries {
		name := fi.Name()
		if !fi.Mode().IsRegular() || checkName(name) != nil || s.catalog.Get([]byte(name)) != nil {
			continue
		}
		volSize := fi.Size()
		if !data.VolumeExists(s.opts.Fs, s.path(name), 2) || volSize == 0 {
			volSize = max(volSize, s.cfg.DefaultVolumeSize)
		}
		meta := &data.FileMeta{VolSize: volSize, Created: fi.ModTime().Unix()}
		if ok := s.catalog.Put([]byte(name), meta); !ok {
			return ErrCatalogUpdate
		}
		loaded++
	}
	if loaded > 0 {
		s.logger.Info().Int("files", loaded).Msg("catalog entries recovered from data dir")
	}
	return nil
}

// 新建（或清空）分卷文件并以读写方式打开，volSize 为 0 时使用默认卷大小
func (s *Service) Create(name string, volSize int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	if volSize == 0 {
		volSize = s.cfg.DefaultVolumeSize
	}
	if volSize < 0 {
		return splitfile.ErrInvalidVolumeSize
	}

	lock := s.lockName(name)
	defer lock.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeFile(name); err != nil && !errors.Is(err, ErrFileNotOpen) {
		return err
	}

	// 卷大小变化时旧的续卷不能复用，新建总是清空
	sf, err := splitfile.NewOpenOptions().
		Read(true).Write(true).Create(true).Truncate(true).
		WithOptions(s.opts).
		Open(s.path(name), volSize)
	if err != nil {
		return err
	}

	meta := newFileMeta(volSize)
	if ok := s.catalog.Put([]byte(name), meta); !ok {
		_ = sf.Close()
		return ErrCatalogUpdate
	}
	s.files[name] = sf
	s.logger.Info().Str("name", name).Int64("volsize", volSize).Msg("split file created")
	return nil
}

// 按 mode 打开目录中已有的分卷文件，已打开的句柄会先关闭
func (s *Service) Open(name string, mode string) error {
	if err := checkName(name); err != nil {
		return err
	}
	oo, err := ParseMode(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.catalog.Get([]byte(name))
	if meta == nil {
		return ErrFileNotFound
	}
	if err := s.closeFile(name); err != nil && !errors.Is(err, ErrFileNotOpen) {
		return err
	}

	sf, err := oo.WithOptions(s.opts).Open(s.path(name), meta.VolSize)
	if err != nil {
		return err
	}
	s.files[name] = sf
	return nil
}

func (s *Service) Write(name string, value []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.handle(name)
	if err != nil {
		return 0, err
	}
	return sf.Write(value)
}

// 读取最多 n 个字节，到达末尾时返回空切片
func (s *Service) Read(name string, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.handle(name)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, err := sf.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

func (s *Service) Seek(name string, offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.handle(name)
	if err != nil {
		return 0, err
	}
	return sf.Seek(offset, whence)
}

func (s *Service) Flush(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.handle(name)
	if err != nil {
		return err
	}
	return sf.Flush()
}

// 关闭已打开的分卷文件
func (s *Service) CloseFile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeFile(name)
}

// 统计信息，文件未打开时临时以只读方式打开
func (s *Service) Stat(name string) (*splitfile.Stat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sf, ok := s.files[name]; ok {
		return sf.Stat()
	}
	meta := s.catalog.Get([]byte(name))
	if meta == nil {
		return nil, ErrFileNotFound
	}
	sf, err := splitfile.NewOpenOptions().Read(true).WithOptions(s.opts).Open(s.path(name), meta.VolSize)
	if err != nil {
		return nil, err
	}
	defer sf.Close()
	return sf.Stat()
}

// 按文件名顺序列出目录中以 prefix 开头的文件
func (s *Service) List(prefix []byte) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	iter := s.catalog.Iterator(false)
	defer iter.Close()

	var names []string
	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		names = append(names, string(key))
	}
	return names
}

// 关闭并删除分卷文件的所有卷，同时从目录中移除
func (s *Service) Drop(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	lock := s.lockName(name)
	defer lock.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog.Get([]byte(name)) == nil {
		return ErrFileNotFound
	}
	if err := s.closeFile(name); err != nil && !errors.Is(err, ErrFileNotOpen) {
		return err
	}
	if err := splitfile.Remove(s.path(name), s.opts); err != nil && !os.IsNotExist(err) {
		return err
	}
	if ok := s.catalog.Delete([]byte(name)); !ok {
		return ErrCatalogUpdate
	}
	s.logger.Info().Str("name", name).Msg("split file dropped")
	return nil
}

// 以独立句柄把 r 中的数据追加到文件末尾，不影响 Open 打开的句柄
func (s *Service) AppendFrom(name string, r io.Reader) (int64, error) {
	meta, lock, err := s.lockFile(name)
	if err != nil {
		return 0, err
	}
	defer lock.Unlock()

	sf, err := splitfile.NewOpenOptions().Write(true).Append(true).WithOptions(s.opts).Open(s.path(name), meta.VolSize)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(sf, r)
	if err == nil {
		err = sf.Flush()
	}
	if cerr := sf.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// 以独立句柄读取从 offset 开始最多 n 个字节，超出末尾时返回空切片
func (s *Service) ReadAt(name string, offset int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	meta, lock, err := s.lockFile(name)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	sf, err := splitfile.NewOpenOptions().Read(true).WithOptions(s.opts).Open(s.path(name), meta.VolSize)
	if err != nil {
		return nil, err
	}
	defer sf.Close()

	if _, err := sf.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, err := sf.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

// 持有文件名锁并返回目录中的元数据，调用方负责解锁
func (s *Service) lockFile(name string) (*data.FileMeta, *sync.Mutex, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}
	lock := s.lockName(name)

	s.mu.Lock()
	meta := s.catalog.Get([]byte(name))
	s.mu.Unlock()
	if meta == nil {
		lock.Unlock()
		return nil, nil, ErrFileNotFound
	}
	return meta, lock, nil
}

// 文件名锁必须在 mu 之前获取
func (s *Service) lockName(name string) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.locks[name]
	if !ok {
		lock = new(sync.Mutex)
		s.locks[name] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// 关闭所有句柄和目录索引，释放数据目录锁
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name := range s.files {
		if err := s.closeFile(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.catalog.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.fileLock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *Service) closeFile(name string) error {
	sf, ok := s.files[name]
	if !ok {
		return ErrFileNotOpen
	}
	delete(s.files, name)
	return sf.Close()
}

func (s *Service) handle(name string) (*splitfile.SplitFile, error) {
	sf, ok := s.files[name]
	if !ok {
		return nil, ErrFileNotOpen
	}
	return sf, nil
}

func (s *Service) path(name string) string {
	return filepath.Join(s.cfg.DataDir, name)
}

// 文件名不能包含路径分隔符，也不能与其他文件的续卷名冲突
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || name == fileLockName || name == index.BPTreeIndexFileName {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			return ErrInvalidName
		}
	}
	return nil
}

// 解析打开模式：r 读，w 写，a 追加，t 截断，c 不存在时新建，x 总是新建
func ParseMode(mode string) (*splitfile.OpenOptions, error) {
	if mode == "" {
		return nil, ErrInvalidMode
	}
	oo := splitfile.NewOpenOptions()
	for _, c := range mode {
		switch c {
		case 'r':
			oo.Read(true)
		case 'w':
			oo.Write(true)
		case 'a':
			oo.Append(true)
		case 't':
			oo.Truncate(true)
		case 'c':
			oo.Create(true)
		case 'x':
			oo.CreateNew(true)
		default:
			return nil, ErrInvalidMode
		}
	}
	return oo, nil
}

func newFileMeta(volSize int64) *data.FileMeta {
	return &data.FileMeta{VolSize: volSize, Created: time.Now().Unix()}
}
