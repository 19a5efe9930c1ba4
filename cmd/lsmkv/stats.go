package main

import (
	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "print segment and buffer statistics",
	Long:  "print segment and buffer statistics as seen right after opening the store.\n\n" + oneShotNote,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDAO(func(dao db.DAO) error {
			s := &session{dao: dao, out: cmd.OutOrStdout()}
			return s.stats()
		})
	},
}
