package splitfile_go

import "os"

// 打开分卷文件的选项，用法与 os.OpenFile 的各个 flag 一致
type OpenOptions struct {
	read      bool
	write     bool
	append    bool
	truncate  bool
	create    bool
	createNew bool

	options Options
}

// 所有选项初始为 false
func NewOpenOptions() *OpenOptions {
	return &OpenOptions{options: DefaultOptions}
}

// 可读
func (o *OpenOptions) Read(read bool) *OpenOptions {
	o.read = read
	return o
}

// 可写
func (o *OpenOptions) Write(write bool) *OpenOptions {
	o.write = write
	return o
}

// 打开后游标位于逻辑文件末尾。只在打开时定位一次，之后的 Seek 不会被写入覆盖
func (o *OpenOptions) Append(append bool) *OpenOptions {
	o.append = append
	return o
}

// 清空第一卷，并删除所有后续卷
func (o *OpenOptions) Truncate(truncate bool) *OpenOptions {
	o.truncate = truncate
	return o
}

// 文件不存在时新建，需要 Write 或 Append
func (o *OpenOptions) Create(create bool) *OpenOptions {
	o.create = create
	return o
}

// 总是新建，第一卷已存在时打开失败
func (o *OpenOptions) CreateNew(createNew bool) *OpenOptions {
	o.createNew = createNew
	return o
}

// 设置文件系统、IO 类型和日志等配置
func (o *OpenOptions) WithOptions(opts Options) *OpenOptions {
	o.options = opts
	return o
}

// 打开 path 处的分卷文件，path 为第一卷的路径，volSize 为每一卷的最大字节数
func (o *OpenOptions) Open(path string, volSize int64) (*SplitFile, error) {
	return newSplitFile(path, *o, volSize)
}

// 只在一次打开过程中使用的令牌，第一次 take 返回 true
type firstOpen struct {
	taken bool
}

func (f *firstOpen) take() bool {
	first := !f.taken
	f.taken = true
	return first
}

// 计算某一卷实际使用的 os.OpenFile flag。
// 只有打开过程中的第一卷按用户选项原样打开，其余卷都是内部续卷：
// 不独占新建、不截断，并且在逻辑文件可写时可以自动创建。
// 从不使用 O_APPEND，追加由游标管理实现。
func (o *OpenOptions) volumeFlag(isFirst bool) (int, error) {
	write := o.write
	if !isFirst && o.append {
		write = true
	}

	create := o.create
	if !isFirst && (o.append || o.createNew || o.write) {
		create = true
	}

	createNew := o.createNew
	if !isFirst && o.createNew {
		createNew = false
	}

	truncate := o.truncate
	if !isFirst && o.truncate {
		truncate = false
	}

	var flag int
	switch {
	case o.read && write:
		flag = os.O_RDWR
	case write:
		flag = os.O_WRONLY
	case o.read:
		flag = os.O_RDONLY
	default:
		return 0, ErrInvalidOpenMode
	}

	if !write && (create || createNew || truncate) {
		return 0, ErrInvalidOpenMode
	}
	if create {
		flag |= os.O_CREATE
	}
	if createNew {
		flag |= os.O_CREATE | os.O_EXCL
	}
	if truncate {
		flag |= os.O_TRUNC
	}
	return flag, nil
}
