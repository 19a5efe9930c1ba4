package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"lsmkv/pkg/persistence"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <segment-file>",
	Short: "dump the raw rows of one segment",
	Long:  "dump every row of a segment file, tombstones included, in file order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpSegment(cmd.OutOrStdout(), args[0], cfg.Storage.Options().Naming)
	},
}

// dumpSegment prints every row of the segment at path. Close errors of the
// iterator and of the segment are reported when nothing failed before them.
func dumpSegment(out io.Writer, path string, naming persistence.Naming) (err error) {
	serial, _ := naming.Parse(filepath.Base(path))

	seg, err := persistence.OpenSegment(path, serial)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := seg.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close segment: %w", cerr)
		}
	}()

	it, err := seg.IteratorFrom(nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close segment iterator: %w", cerr)
		}
	}()

	fmt.Fprintf(out, "segment %s serial=%d rows=%d bytes=%d\n", path, seg.Serial(), seg.Rows(), seg.SizeInBytes())
	for ; it.Valid(); it.Next() {
		r := it.Row()
		if r.IsTombstone() {
			fmt.Fprintf(out, "%s\t%d\ttombstone\n", strconv.Quote(string(r.Key)), r.Value.Time())
			continue
		}
		fmt.Fprintf(out, "%s\t%d\t%s\n", strconv.Quote(string(r.Key)), r.Value.Timestamp, strconv.Quote(string(r.Value.Data)))
	}
	return it.Err()
}
