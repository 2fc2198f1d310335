package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	splitfile "splitfile-go"
	"splitfile-go/data"
	"splitfile-go/utils"
)

var cmdStat = &cobra.Command{
	Use:   "stat [base]",
	Short: "Show the volumes of a split file",
	Args:  cobra.ExactArgs(1),
	RunE:  runStat,
}

var flagStat struct {
	VolumeSize string
}

func init() {
	cmdStat.Flags().StringVarP(&flagStat.VolumeSize, "volume-size", "s", "", "Volume size, defaults to the size of the first volume")
}

func runStat(cmd *cobra.Command, args []string) error {
	volSize, err := volumeSize(cmd, flagStat.VolumeSize, args[0])
	if err != nil {
		return err
	}

	sf, err := splitfile.NewOpenOptions().Read(true).WithOptions(options()).Open(args[0], volSize)
	if err != nil {
		return err
	}
	defer sf.Close()

	stat, err := sf.Stat()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "volume size\t%s\n", utils.HumanSize(stat.VolumeSize))
	fmt.Fprintf(tw, "total size\t%s (%d bytes)\n", utils.HumanSize(stat.Size), stat.Size)
	for i, size := range stat.VolumeSizes {
		fmt.Fprintf(tw, "%s\t%s\n", data.VolumeName(args[0], i+1), utils.HumanSize(size))
	}
	return tw.Flush()
}
