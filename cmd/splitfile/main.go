package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	splitfile "splitfile-go"
	"splitfile-go/data"
	"splitfile-go/utils"
)

var cmdMain = &cobra.Command{
	Use:           "splitfile",
	Short:         "Split files into size-capped volumes and join them back",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var flagMain struct {
	Verbose bool
}

// 所有子命令共用的文件系统，测试中替换为内存文件系统
var fsys afero.Fs = afero.NewOsFs()

func init() {
	cmdMain.PersistentFlags().BoolVarP(&flagMain.Verbose, "verbose", "v", false, "Log volume operations to stderr")
	cmdMain.AddCommand(cmdSplit, cmdJoin, cmdStat)
}

func main() {
	if err := cmdMain.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func options() splitfile.Options {
	opts := splitfile.DefaultOptions
	opts.Fs = fsys
	if flagMain.Verbose {
		opts.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return opts
}

// 未指定卷大小时，以第一卷的大小作为卷大小
func volumeSize(cmd *cobra.Command, flag, base string) (int64, error) {
	if cmd.Flags().Changed("volume-size") {
		return utils.ParseSize(flag)
	}
	fi, err := fsys.Stat(data.VolumeName(base, 1))
	if err != nil {
		return 0, err
	}
	if fi.Size() == 0 {
		return 1, nil
	}
	return fi.Size(), nil
}
