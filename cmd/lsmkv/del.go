package main

import (
	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(delCmd)
}

var delCmd = &cobra.Command{
	Use:     "del <key>",
	Aliases: []string{"rm"},
	Short:   "delete a key",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDAO(func(dao db.DAO) error {
			s := &session{dao: dao, out: cmd.OutOrStdout()}
			return s.del(args[0])
		})
	},
}
