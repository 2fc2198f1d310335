package splitfile_go

import (
	"errors"
	"io"
	"io/fs"
	"math"

	"github.com/rs/zerolog"

	"splitfile-go/data"
)

// 分卷文件实例，读写方式与单个 os.File 一致，数据分布在多个最大为 volSize 的卷中。
// 第二卷起的文件名为第一卷路径加上 ".n" 后缀。不支持并发使用。
type SplitFile struct {
	volumes []*data.Volume // 卷列表，至少包含第一卷
	path    string         // 第一卷路径
	opts    OpenOptions
	volSize int64 // 每一卷的最大字节数
	index   int   // 当前活跃卷序号，从 1 开始
	closed  bool
	logger  zerolog.Logger
}

// 以只读方式打开分卷文件
func Open(path string, volSize int64) (*SplitFile, error) {
	return NewOpenOptions().Read(true).Open(path, volSize)
}

// 以只写方式打开分卷文件，不存在则新建，存在则清空
func Create(path string, volSize int64) (*SplitFile, error) {
	return NewOpenOptions().Write(true).Create(true).Truncate(true).Open(path, volSize)
}

func newSplitFile(path string, opts OpenOptions, volSize int64) (*SplitFile, error) {
	if volSize <= 0 {
		return nil, ErrInvalidVolumeSize
	}
	opts.options = opts.options.withDefaults()
	logger := opts.options.Logger.With().Str("path", path).Logger()

	if opts.truncate {
		if err := truncateVolumes(opts.options, path); err != nil {
			return nil, err
		}
	}

	volumes, err := initVolumes(path, &opts)
	if err != nil {
		return nil, err
	}

	sf := &SplitFile{
		volumes: volumes,
		path:    path,
		opts:    opts,
		volSize: volSize,
		index:   1,
		logger:  logger,
	}
	logger.Debug().Int("volumes", len(volumes)).Int64("volsize", volSize).Msg("split file opened")

	// 追加模式只在打开时定位到末尾
	if opts.append {
		if _, err := sf.Seek(0, io.SeekEnd); err != nil {
			_ = sf.Close()
			return nil, err
		}
	}
	return sf, nil
}

// 打开第一卷以及磁盘上连续存在的后续卷
func initVolumes(path string, opts *OpenOptions) ([]*data.Volume, error) {
	var volumes []*data.Volume
	closeAll := func() {
		for _, v := range volumes {
			_ = v.Close()
		}
	}

	first := &firstOpen{}
	for i := 1; i == 1 || data.VolumeExists(opts.options.Fs, path, i); i++ {
		v, err := openVolume(path, opts, i, first.take())
		if err != nil {
			closeAll()
			return nil, err
		}
		volumes = append(volumes, v)
	}
	return volumes, nil
}

func openVolume(path string, opts *OpenOptions, index int, isFirst bool) (*data.Volume, error) {
	flag, err := opts.volumeFlag(isFirst)
	if err != nil {
		return nil, err
	}
	o := opts.options
	return data.OpenVolume(o.Fs, path, index, flag, o.FilePerm, o.IOType)
}

// 从第二卷开始依次删除，遇到不存在的卷即停止
func truncateVolumes(opts Options, path string) error {
	for i := 2; ; i++ {
		name := data.VolumeName(path, i)
		if err := opts.Fs.Remove(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		opts.Logger.Debug().Str("volume", name).Msg("continuation volume removed")
	}
}

// 删除分卷文件的所有卷
func Remove(path string, opts Options) error {
	opts = opts.withDefaults()
	if err := opts.Fs.Remove(path); err != nil {
		return err
	}
	return truncateVolumes(opts, path)
}

// 写入时在末尾追加新卷
func (sf *SplitFile) addVolume() (*data.Volume, error) {
	index := len(sf.volumes) + 1
	v, err := openVolume(sf.path, &sf.opts, index, false)
	if err != nil {
		return nil, err
	}
	sf.volumes = append(sf.volumes, v)
	sf.logger.Debug().Int("volume", index).Msg("volume added")
	return v, nil
}

// 从活跃卷开始读取，直到 buf 填满或所有卷读完，不会新建卷。
// 没有读到任何数据时返回 io.EOF
func (sf *SplitFile) Read(buf []byte) (int, error) {
	if sf.closed {
		return 0, ErrFileClosed
	}

	var total int
	for i := sf.index - 1; i < len(sf.volumes); i++ {
		v := sf.volumes[i]
		sf.index = i + 1
		if err := v.CheckReset(); err != nil {
			return total, err
		}
		n, err := v.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if total == len(buf) {
			break
		}
	}

	if total == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// 从活跃卷开始写入，每一卷最多写到 volSize，已有卷写满后自动追加新卷。
// 出错时返回已经写入的字节数
func (sf *SplitFile) Write(buf []byte) (int, error) {
	if sf.closed {
		return 0, ErrFileClosed
	}

	var total int
	for i := sf.index - 1; i < len(sf.volumes); i++ {
		v := sf.volumes[i]
		sf.index = i + 1
		if err := v.CheckReset(); err != nil {
			return total, err
		}
		n, err := sf.writeVolume(v, buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if total == len(buf) {
			return total, nil
		}
	}

	for total < len(buf) {
		v, err := sf.addVolume()
		if err != nil {
			return total, err
		}
		sf.index = len(sf.volumes)
		n, err := sf.writeVolume(v, buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// 只写入卷内剩余空间能容纳的部分
func (sf *SplitFile) writeVolume(v *data.Volume, buf []byte) (int, error) {
	room := sf.volSize - v.Pos
	if room <= 0 {
		return 0, nil
	}
	if int64(len(buf)) > room {
		buf = buf[:room]
	}
	return v.Write(buf)
}

// 移动逻辑游标。超出最后一卷的位置会被限制在逻辑文件末尾。
// 失败时所有卷的游标保持不变
func (sf *SplitFile) Seek(offset int64, whence int) (int64, error) {
	if sf.closed {
		return 0, ErrFileClosed
	}

	// length 会移动最后一卷的真实游标，出错时需要恢复
	last := sf.volumes[len(sf.volumes)-1]
	lastPos, lastState := last.Pos, last.State

	var (
		base  int64
		size  int64
		sized bool
		err   error
	)
	fail := func(err error) (int64, error) {
		if sized {
			sf.restoreLast(lastPos, lastState)
		}
		return 0, err
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = sf.position()
	case io.SeekEnd:
		if size, err = sf.length(); err != nil {
			return 0, err
		}
		sized = true
		base = size
	default:
		return 0, ErrInvalidWhence
	}

	abs, err := addOffset(base, offset)
	if err != nil {
		return fail(err)
	}

	// 目标位于最后一卷或之后时，不允许越过逻辑文件末尾
	count := int64(len(sf.volumes))
	if abs/sf.volSize+1 >= count {
		if !sized {
			if size, err = sf.length(); err != nil {
				return 0, err
			}
			sized = true
		}
		abs = min(abs, size)
	}

	// 最后一卷恰好写满时，末尾位置落在最后一卷的卷尾
	index := min(abs/sf.volSize+1, count)
	local := abs - (index-1)*sf.volSize

	v := sf.volumes[index-1]
	if _, err := v.Seek(local, io.SeekStart); err != nil {
		return fail(err)
	}
	v.State = data.Synced
	sf.index = int(index)

	for _, later := range sf.volumes[index:] {
		later.State = data.NeedsReset
	}
	return abs, nil
}

// 把最后一卷的游标和状态恢复到 length 之前
func (sf *SplitFile) restoreLast(pos int64, state data.VolumeState) {
	last := sf.volumes[len(sf.volumes)-1]
	if state == data.Synced {
		if _, err := last.Seek(pos, io.SeekStart); err != nil {
			sf.logger.Warn().Err(err).Int("volume", last.Index).Msg("failed to restore volume cursor")
			return
		}
	}
	last.State = state
}

// 当前逻辑游标
func (sf *SplitFile) position() int64 {
	v := sf.volumes[sf.index-1]
	pos := v.Pos
	if v.State == data.NeedsReset {
		pos = 0
	}
	return int64(sf.index-1)*sf.volSize + pos
}

// 逻辑文件长度。会移动最后一卷的真实游标，并标记其需要重置
func (sf *SplitFile) length() (int64, error) {
	last := sf.volumes[len(sf.volumes)-1]
	size, err := last.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	last.State = data.NeedsReset
	return int64(len(sf.volumes)-1)*sf.volSize + size, nil
}

func addOffset(base, offset int64) (int64, error) {
	if offset >= 0 {
		if base > math.MaxInt64-offset {
			return 0, ErrSeekOverflow
		}
		return base + offset, nil
	}
	if base+offset < 0 {
		return 0, ErrNegativeSeek
	}
	return base + offset, nil
}

// 按卷序号依次持久化，遇到错误立即返回
func (sf *SplitFile) Flush() error {
	if sf.closed {
		return ErrFileClosed
	}
	for _, v := range sf.volumes {
		if err := v.Sync(); err != nil {
			return err
		}
	}
	return nil
}

// 关闭所有卷，返回第一个错误
func (sf *SplitFile) Close() error {
	if sf.closed {
		return ErrFileClosed
	}
	sf.closed = true

	var firstErr error
	for _, v := range sf.volumes {
		if err := v.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sf.logger.Debug().Int("volumes", len(sf.volumes)).Msg("split file closed")
	return firstErr
}

// 分卷文件统计信息
type Stat struct {
	VolumeCount int     // 卷数量
	VolumeSize  int64   // 每一卷的最大字节数
	VolumeSizes []int64 // 每一卷在磁盘上的大小
	Size        int64   // 逻辑文件大小
}

// 统计信息，通过文件元数据获取，不移动任何游标
func (sf *SplitFile) Stat() (*Stat, error) {
	if sf.closed {
		return nil, ErrFileClosed
	}

	stat := &Stat{
		VolumeCount: len(sf.volumes),
		VolumeSize:  sf.volSize,
		VolumeSizes: make([]int64, 0, len(sf.volumes)),
	}
	for _, v := range sf.volumes {
		size, err := v.Size()
		if err != nil {
			return nil, err
		}
		stat.VolumeSizes = append(stat.VolumeSizes, size)
	}
	stat.Size = int64(len(sf.volumes)-1)*sf.volSize + stat.VolumeSizes[len(sf.volumes)-1]
	return stat, nil
}

// 第一卷路径
func (sf *SplitFile) Name() string {
	return sf.path
}

func (sf *SplitFile) VolumeSize() int64 {
	return sf.volSize
}

// 当前已打开的卷数量
func (sf *SplitFile) Volumes() int {
	return len(sf.volumes)
}
