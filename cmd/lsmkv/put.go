package main

import (
	"strings"

	"lsmkv/pkg/db"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(putCmd)
}

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "store a value",
	Long:  "store a value under key; extra arguments are joined with spaces",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDAO(func(dao db.DAO) error {
			s := &session{dao: dao, out: cmd.OutOrStdout()}
			return s.put(args[0], strings.Join(args[1:], " "))
		})
	},
}
