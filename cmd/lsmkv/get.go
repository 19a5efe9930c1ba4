package main

import (
	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "print the value stored under key",
	Long:  "print the value stored under key.\n\n" + oneShotNote,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDAO(func(dao db.DAO) error {
			s := &session{dao: dao, out: cmd.OutOrStdout()}
			return s.get(args[0])
		})
	},
}
