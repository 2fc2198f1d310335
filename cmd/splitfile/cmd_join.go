package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	splitfile "splitfile-go"
	"splitfile-go/fio"
	"splitfile-go/utils"
)

var cmdJoin = &cobra.Command{
	Use:   "join [base] [destination]",
	Short: "Concatenate the volumes of base into a single file",
	Args:  cobra.ExactArgs(2),
	RunE:  runJoin,
}

var flagJoin struct {
	VolumeSize string
	Mmap       bool
}

func init() {
	cmdJoin.Flags().StringVarP(&flagJoin.VolumeSize, "volume-size", "s", "", "Volume size, defaults to the size of the first volume")
	cmdJoin.Flags().BoolVar(&flagJoin.Mmap, "mmap", false, "Memory-map the volumes while reading")
}

func runJoin(cmd *cobra.Command, args []string) error {
	volSize, err := volumeSize(cmd, flagJoin.VolumeSize, args[0])
	if err != nil {
		return err
	}

	opts := options()
	if flagJoin.Mmap {
		opts.IOType = fio.MemoryMap
	}
	src, err := splitfile.NewOpenOptions().Read(true).WithOptions(opts).Open(args[0], volSize)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fsys.OpenFile(args[1], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fio.DataFilePerm)
	if err != nil {
		return err
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "joined %d volume(s) into %s (%s)\n",
		src.Volumes(), args[1], utils.HumanSize(n))
	return nil
}
