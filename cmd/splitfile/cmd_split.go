package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	splitfile "splitfile-go"
	"splitfile-go/utils"
)

var cmdSplit = &cobra.Command{
	Use:   "split [source] [base]",
	Short: "Copy a file into volumes named base, base.2, base.3, ...",
	Args:  cobra.ExactArgs(2),
	RunE:  runSplit,
}

var flagSplit struct {
	VolumeSize string
}

func init() {
	cmdSplit.Flags().StringVarP(&flagSplit.VolumeSize, "volume-size", "s", "64MB", "Maximum size of each volume")
}

func runSplit(cmd *cobra.Command, args []string) error {
	volSize, err := utils.ParseSize(flagSplit.VolumeSize)
	if err != nil {
		return fmt.Errorf("invalid volume size %q: %w", flagSplit.VolumeSize, err)
	}

	src, err := fsys.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := splitfile.NewOpenOptions().
		Write(true).Create(true).Truncate(true).
		WithOptions(options()).
		Open(args[1], volSize)
	if err != nil {
		return err
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Flush(); err != nil {
		_ = dst.Close()
		return err
	}
	volumes := dst.Volumes()
	if err := dst.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s into %d volume(s) of %s\n",
		utils.HumanSize(n), volumes, utils.HumanSize(volSize))
	return nil
}
