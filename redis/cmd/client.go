package main

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/redcon"

	"splitfile-go/service"
	"splitfile-go/utils"
)

var errInvalidArgs = errors.New("invalid arguments")

type cmdHandler func(cli *SplitFileClient, args [][]byte) (interface{}, error)

var commands = map[string]cmdHandler{
	"quit":   nil,
	"ping":   nil,
	"create": create,
	"open":   open,
	"write":  write,
	"read":   read,
	"seek":   seek,
	"flush":  flush,
	"close":  closeFile,
	"stat":   stat,
	"list":   list,
	"drop":   drop,
}

type SplitFileClient struct {
	server *SplitFileServer
	svc    *service.Service
}

func execClientCommand(conn redcon.Conn, cmd redcon.Command) {
	command := strings.ToLower(string(cmd.Args[0]))
	cmdFunc, exist := commands[command]
	if !exist {
		conn.WriteError("unsupported command: " + command)
		return
	}

	cli, _ := conn.Context().(*SplitFileClient)
	switch command {
	case "quit":
		conn.Close()
	case "ping":
		conn.WriteString("pong")
	default:
		res, err := cmdFunc(cli, cmd.Args[1:])
		if err != nil {
			if errors.Is(err, service.ErrFileNotFound) {
				conn.WriteNull()
			} else {
				conn.WriteError(err.Error())
			}
			return
		}
		conn.WriteAny(res)
	}
}

// create name [volsize]
func create(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, errInvalidArgs
	}
	var volSize int64
	if len(args) == 2 {
		size, err := utils.ParseSize(string(args[1]))
		if err != nil {
			return nil, err
		}
		volSize = size
	}
	if err := cli.svc.Create(string(args[0]), volSize); err != nil {
		return nil, err
	}
	return redcon.SimpleString("ok"), nil
}

// open name mode
func open(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 2 {
		return nil, errInvalidArgs
	}
	if err := cli.svc.Open(string(args[0]), string(args[1])); err != nil {
		return nil, err
	}
	return redcon.SimpleString("ok"), nil
}

// write name value
func write(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 2 {
		return nil, errInvalidArgs
	}
	n, err := cli.svc.Write(string(args[0]), args[1])
	if err != nil {
		return nil, err
	}
	return redcon.SimpleInt(n), nil
}

// read name count
func read(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 2 {
		return nil, errInvalidArgs
	}
	count, err := strconv.Atoi(string(args[1]))
	if err != nil || count < 0 {
		return nil, errInvalidArgs
	}
	return cli.svc.Read(string(args[0]), count)
}

// seek name offset [start|current|end]
func seek(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, errInvalidArgs
	}
	offset, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, errInvalidArgs
	}
	whence := io.SeekStart
	if len(args) == 3 {
		if whence, err = parseWhence(string(args[2])); err != nil {
			return nil, err
		}
	}
	pos, err := cli.svc.Seek(string(args[0]), offset, whence)
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func flush(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 1 {
		return nil, errInvalidArgs
	}
	if err := cli.svc.Flush(string(args[0])); err != nil {
		return nil, err
	}
	return redcon.SimpleString("ok"), nil
}

func closeFile(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 1 {
		return nil, errInvalidArgs
	}
	if err := cli.svc.CloseFile(string(args[0])); err != nil {
		return nil, err
	}
	return redcon.SimpleString("ok"), nil
}

// 返回 [卷数量, 卷大小, 逻辑大小, 各卷大小...]
func stat(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 1 {
		return nil, errInvalidArgs
	}
	st, err := cli.svc.Stat(string(args[0]))
	if err != nil {
		return nil, err
	}
	res := []int64{int64(st.VolumeCount), st.VolumeSize, st.Size}
	return append(res, st.VolumeSizes...), nil
}

// list [prefix]
func list(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) > 1 {
		return nil, errInvalidArgs
	}
	var prefix []byte
	if len(args) == 1 {
		prefix = args[0]
	}
	names := cli.svc.List(prefix)
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func drop(cli *SplitFileClient, args [][]byte) (interface{}, error) {
	if len(args) != 1 {
		return nil, errInvalidArgs
	}
	if err := cli.svc.Drop(string(args[0])); err != nil {
		return nil, err
	}
	return redcon.SimpleString("ok"), nil
}

func parseWhence(s string) (int, error) {
	switch strings.ToLower(s) {
	case "start", "0":
		return io.SeekStart, nil
	case "current", "1":
		return io.SeekCurrent, nil
	case "end", "2":
		return io.SeekEnd, nil
	default:
		return 0, errInvalidArgs
	}
}
